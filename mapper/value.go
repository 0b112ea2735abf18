package mapper

import (
	"math"
	"net/url"
	"time"
)

// ValueMapper é um conversor bidirecional entre um tipo de domínio e um valor
// armazenável em Document.
//
// Contrato:
//   - FromDB(nil) retorna (nil, nil); um valor não-nil de representação
//     incompatível retorna um *Error (ErrWrongType ou ErrUnparseable).
//   - ToDB(nil) retorna (nil, nil); valores nulos nunca são escritos — a
//     camada de entidade omite a chave.
//
// Implementações devem ser imutáveis após a inicialização e seguras para uso
// concorrente.
type ValueMapper interface {
	FromDB(v any) (any, error)
	ToDB(v any) (any, error)
}

// Singletons dos mappers de valor embutidos.
var (
	String   ValueMapper = StringMapper{}
	Int32    ValueMapper = Int32Mapper{}
	Int64    ValueMapper = Int64Mapper{}
	Float64  ValueMapper = Float64Mapper{}
	Bool     ValueMapper = BoolMapper{}
	Binary   ValueMapper = BinaryMapper{}
	URL      ValueMapper = URLMapper{}
	DateTime ValueMapper = TimeMapper{}
)

// asInt64 lê qualquer representação numérica inteira de documento.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// StringMapper converte strings.
type StringMapper struct{}

func (StringMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected string, got %T", v)
	}
	return s, nil
}

func (StringMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected string, got %T", v)
	}
	return s, nil
}

// Int32Mapper converte inteiros de 32 bits com sinal. A leitura é tolerante a
// qualquer representação numérica integral dentro da faixa.
type Int32Mapper struct{}

func (Int32Mapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := asInt64(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected integer, got %T", v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, Errorf(ErrUnparseable, "value %d overflows int32", n)
	}
	return int32(n), nil
}

func (Int32Mapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case int32:
		return n, nil
	case int:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, Errorf(ErrUnparseable, "value %d overflows int32", n)
		}
		return int32(n), nil
	default:
		return nil, Errorf(ErrWrongType, "expected int32, got %T", v)
	}
}

// Int64Mapper converte inteiros de 64 bits com sinal.
type Int64Mapper struct{}

func (Int64Mapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := asInt64(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected integer, got %T", v)
	}
	return n, nil
}

func (Int64Mapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return nil, Errorf(ErrWrongType, "expected int64, got %T", v)
	}
}

// Float64Mapper converte números de ponto flutuante de precisão dupla.
type Float64Mapper struct{}

func (Float64Mapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := asFloat64(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected number, got %T", v)
	}
	return f, nil
}

func (Float64Mapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected float64, got %T", v)
	}
	return f, nil
}

// BoolMapper converte booleanos.
type BoolMapper struct{}

func (BoolMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected bool, got %T", v)
	}
	return b, nil
}

func (BoolMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected bool, got %T", v)
	}
	return b, nil
}

// BinaryMapper converte blobs binários crus.
type BinaryMapper struct{}

func (BinaryMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected binary, got %T", v)
	}
	return b, nil
}

func (BinaryMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected []byte, got %T", v)
	}
	if b == nil {
		return nil, nil
	}
	return b, nil
}

// URLMapper converte *url.URL de/para a forma textual armazenada.
type URLMapper struct{}

func (URLMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected URL string, got %T", v)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, WrapError(ErrUnparseable, err, "invalid URL %q", s)
	}
	return u, nil
}

func (URLMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	u, ok := v.(*url.URL)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected *url.URL, got %T", v)
	}
	if u == nil {
		return nil, nil
	}
	return u.String(), nil
}

// TimeMapper converte time.Time de/para epoch em milissegundos (UTC).
// O instante zero é tratado como nulo e omitido do documento.
type TimeMapper struct{}

func (TimeMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := asInt64(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected timestamp number, got %T", v)
	}
	return time.UnixMilli(n).UTC(), nil
}

func (TimeMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected time.Time, got %T", v)
	}
	if t.IsZero() {
		return nil, nil
	}
	return t.UnixMilli(), nil
}
