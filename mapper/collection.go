package mapper

// CollectionMapper converte sequências ordenadas de um tipo para/de arrays de
// documento, delegando cada elemento ao mapper de elemento.
//
// A leitura é tolerante: null vira sequência vazia e um escalar avulso é
// promovido a sequência de um elemento. Elementos que convertem para null são
// descartados do resultado — coerente com a política de não armazenar nulls.
// A ordem dos elementos é preservada exatamente.
type CollectionMapper struct {
	elem ValueMapper
}

// NewCollection cria um CollectionMapper sobre o mapper de elemento informado.
func NewCollection(elem ValueMapper) *CollectionMapper {
	return &CollectionMapper{elem: elem}
}

// Elem retorna o mapper de elemento.
func (m *CollectionMapper) Elem() ValueMapper { return m.elem }

func (m *CollectionMapper) FromDB(v any) (any, error) {
	switch vv := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		out := make([]any, 0, len(vv))
		for i, raw := range vv {
			e, err := m.elem.FromDB(raw)
			if err != nil {
				return nil, WrapError(ErrUnparseable, err, "element %d", i)
			}
			if e == nil {
				continue
			}
			out = append(out, e)
		}
		return out, nil
	default:
		// Leitura tolerante: escalar promovido a sequência unitária.
		e, err := m.elem.FromDB(v)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return []any{}, nil
		}
		return []any{e}, nil
	}
}

func (m *CollectionMapper) ToDB(v any) (any, error) {
	// Entrada nula converte para array vazio, nunca para null.
	if v == nil {
		return []any{}, nil
	}
	vv, ok := v.([]any)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected sequence, got %T", v)
	}
	out := make([]any, 0, len(vv))
	for i, e := range vv {
		raw, err := m.elem.ToDB(e)
		if err != nil {
			return nil, WrapError(ErrUnparseable, err, "element %d", i)
		}
		if raw == nil {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}
