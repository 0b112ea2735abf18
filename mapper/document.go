package mapper

// Document é a representação semiestruturada de uma entidade persistida.
//
// Os valores de um Document pertencem a um conjunto fechado de tipos:
// nil, bool, int32, int64, float64, string, []byte, Document e []any
// (sequência ordenada de qualquer um dos anteriores).
type Document map[string]any

// Chaves reservadas do documento. Nenhum campo de esquema pode colidir com elas.
const (
	// FieldID identifica o documento na coleção.
	FieldID = "_id"
	// FieldVersion guarda a versão inteira do esquema (ausente = 0).
	FieldVersion = "_ver"
	// FieldType guarda o discriminador polimórfico do sub-esquema.
	FieldType = "_type"
	// FieldModified guarda o timestamp da última escrita (carimbado pela
	// camada DAO, nunca pelo mapper).
	FieldModified = "_modified"
)

var reservedFields = map[string]struct{}{
	FieldID:       {},
	FieldVersion:  {},
	FieldType:     {},
	FieldModified: {},
}

// IsReservedField informa se name é uma das chaves reservadas do documento.
func IsReservedField(name string) bool {
	_, ok := reservedFields[name]
	return ok
}

// ReservedFields retorna as chaves reservadas em ordem estável.
func ReservedFields() []string {
	return []string{FieldID, FieldVersion, FieldType, FieldModified}
}

// asDocument aceita tanto Document quanto map[string]any cru vindo de
// camadas de decodificação externas.
func asDocument(v any) (Document, bool) {
	switch d := v.(type) {
	case Document:
		return d, true
	case map[string]any:
		return Document(d), true
	default:
		return nil, false
	}
}
