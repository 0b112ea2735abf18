package mapper

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// CurrencyCode é o mapper embutido para códigos de moeda ISO 4217,
// representados no domínio como currency.Unit.
var CurrencyCode ValueMapper = CurrencyMapper{}

// CurrencyMapper converte currency.Unit de/para o código ISO armazenado.
type CurrencyMapper struct{}

func (CurrencyMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected currency code string, got %T", v)
	}
	unit, err := currency.ParseISO(s)
	if err != nil {
		return nil, WrapError(ErrUnparseable, err, "invalid currency code %q", s)
	}
	return unit, nil
}

func (CurrencyMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	unit, ok := v.(currency.Unit)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected currency.Unit, got %T", v)
	}
	if unit == (currency.Unit{}) {
		return nil, nil
	}
	return unit.String(), nil
}

// LocaleTag é o mapper embutido para locales BCP-47, representados no domínio
// como language.Tag.
var LocaleTag ValueMapper = LocaleMapper{}

// LocaleMapper converte language.Tag de/para a forma textual armazenada.
type LocaleMapper struct{}

func (LocaleMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected locale string, got %T", v)
	}
	tag, err := language.Parse(s)
	if err != nil {
		return nil, WrapError(ErrUnparseable, err, "invalid locale %q", s)
	}
	return tag, nil
}

func (LocaleMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	tag, ok := v.(language.Tag)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected language.Tag, got %T", v)
	}
	if tag == language.Und {
		return nil, nil
	}
	return tag.String(), nil
}

// Money é um valor monetário em unidades menores (centavos) com a moeda.
type Money struct {
	Amount   int64
	Currency currency.Unit
}

// IsZero informa se o valor monetário está vazio (sem moeda definida).
func (m Money) IsZero() bool {
	return m.Currency == (currency.Unit{})
}

// MoneyValue é o mapper embutido para valores Money, armazenados como
// documento aninhado {amount, currency}.
var MoneyValue ValueMapper = MoneyMapper{}

// MoneyMapper converte Money de/para um documento aninhado.
type MoneyMapper struct{}

func (MoneyMapper) FromDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	doc, ok := asDocument(v)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected money document, got %T", v)
	}
	amount, ok := asInt64(doc["amount"])
	if !ok {
		return nil, Errorf(ErrWrongType, "expected integer money amount, got %T", doc["amount"])
	}
	code, ok := doc["currency"].(string)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected currency code string, got %T", doc["currency"])
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, WrapError(ErrUnparseable, err, "invalid currency code %q", code)
	}
	return Money{Amount: amount, Currency: unit}, nil
}

func (MoneyMapper) ToDB(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(Money)
	if !ok {
		return nil, Errorf(ErrWrongType, "expected mapper.Money, got %T", v)
	}
	if m.IsZero() {
		return nil, nil
	}
	return Document{
		"amount":   m.Amount,
		"currency": m.Currency.String(),
	}, nil
}
