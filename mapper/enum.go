package mapper

// EnumMapper converte constantes de enumeração de/para a string armazenada.
//
// A aplicação declara o mapeamento completo constante⇄string na construção:
// toda constante deve estar mapeada exatamente uma vez e nenhuma string
// armazenada pode ser compartilhada por duas constantes. Violações são
// SchemaError na construção, nunca na conversão.
type EnumMapper[E comparable] struct {
	toDB   map[E]string
	fromDB map[string]E
}

// NewEnum valida e constrói um EnumMapper a partir da lista completa de
// constantes e da tabela constante→string.
func NewEnum[E comparable](constants []E, values map[E]string) (*EnumMapper[E], error) {
	toDB := make(map[E]string, len(constants))
	fromDB := make(map[string]E, len(constants))

	for _, c := range constants {
		if _, dup := toDB[c]; dup {
			return nil, schemaErrorf("enum constant %v listed twice", c)
		}
		s, ok := values[c]
		if !ok {
			return nil, schemaErrorf("enum constant %v has no mapped value", c)
		}
		if prev, dup := fromDB[s]; dup {
			return nil, schemaErrorf("enum constants %v and %v share stored value %q", prev, c, s)
		}
		toDB[c] = s
		fromDB[s] = c
	}
	if len(values) != len(constants) {
		return nil, schemaErrorf("enum mapping declares %d values for %d constants", len(values), len(constants))
	}

	return &EnumMapper[E]{toDB: toDB, fromDB: fromDB}, nil
}

// MustEnum é como NewEnum, mas entra em pânico se o mapeamento for inválido.
// Adequado para declarações em nível de pacote: o processo falha no startup.
func MustEnum[E comparable](constants []E, values map[E]string) *EnumMapper[E] {
	m, err := NewEnum(constants, values)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *EnumMapper[E]) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected enum string, got %T", v)
	}
	c, ok := m.fromDB[s]
	if !ok {
		return nil, Errorf(ErrUnparseable, "unknown enum value %q", s)
	}
	return c, nil
}

func (m *EnumMapper[E]) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	c, ok := v.(E)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected enum constant, got %T", v)
	}
	s, ok := m.toDB[c]
	if !ok {
		return nil, Errorf(ErrUnparseable, "enum constant %v is not mapped", c)
	}
	return s, nil
}
