package mapper

import (
	"github.com/google/uuid"
)

// Ref é um identificador opaco de referência entre documentos, armazenado na
// forma textual. O valor zero representa "sem referência" e é omitido na
// escrita.
type Ref struct {
	id uuid.UUID
}

// NewRef gera uma nova referência aleatória.
func NewRef() Ref {
	return Ref{id: uuid.New()}
}

// ParseRef interpreta a forma textual de uma referência.
func ParseRef(s string) (Ref, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Ref{}, err
	}
	return Ref{id: id}, nil
}

// MustRef interpreta a forma textual e entra em pânico se inválida.
// Uso restrito a inicialização e testes.
func MustRef(s string) Ref {
	return Ref{id: uuid.MustParse(s)}
}

func (r Ref) String() string { return r.id.String() }

// IsZero informa se a referência está vazia.
func (r Ref) IsZero() bool { return r.id == uuid.Nil }

// Reference é o mapper embutido para valores Ref.
var Reference ValueMapper = RefMapper{}

// RefMapper converte Ref de/para a forma textual armazenada.
type RefMapper struct{}

func (RefMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected reference string, got %T", v)
	}
	r, err := ParseRef(s)
	if err != nil {
		return nil, WrapError(ErrUnparseable, err, "invalid reference %q", s)
	}
	return r, nil
}

func (RefMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	r, ok := v.(Ref)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected mapper.Ref, got %T", v)
	}
	if r.IsZero() {
		return nil, nil
	}
	return r.String(), nil
}
