// Package validation acumula falhas de validação campo a campo e as levanta
// de uma só vez, como um único erro composto.
//
// O Collector aceita checagens pontuais (Required, MinLength, Range, Matches,
// Check) e também a validação por tags de struct do go-playground/validator.
// Nada interrompe na primeira falha: Err() devolve nil ou um *ValidationError
// com a lista completa.
//
// Exemplo:
//
//	c := validation.NewCollector()
//	c.Required("name", req.Name)
//	c.Range("age", int64(req.Age), 0, 150)
//	if err := c.Err(); err != nil { /* ... */ }
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError descreve uma falha de validação de um campo.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationError agrega todas as falhas de uma rodada de validação.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Collector acumula falhas de validação sem interromper na primeira.
type Collector struct {
	valid  *validator.Validate
	fields []FieldError
}

// NewCollector cria um coletor vazio.
func NewCollector() *Collector {
	return &Collector{valid: validator.New()}
}

// Check registra uma falha para o campo quando ok é falso.
func (c *Collector) Check(field string, ok bool, reason string) *Collector {
	if !ok {
		c.fields = append(c.fields, FieldError{Field: field, Reason: reason})
	}
	return c
}

// Required exige um valor não vazio.
func (c *Collector) Required(field string, value any) *Collector {
	empty := false
	switch v := value.(type) {
	case nil:
		empty = true
	case string:
		empty = strings.TrimSpace(v) == ""
	case []any:
		empty = len(v) == 0
	}
	return c.Check(field, !empty, "is required")
}

// MinLength exige um comprimento mínimo de string.
func (c *Collector) MinLength(field, value string, min int) *Collector {
	return c.Check(field, len(value) >= min, fmt.Sprintf("must have at least %d characters", min))
}

// Range exige que o valor esteja na faixa inclusiva [min, max].
func (c *Collector) Range(field string, value, min, max int64) *Collector {
	return c.Check(field, min <= value && value <= max, fmt.Sprintf("must be between %d and %d", min, max))
}

// Matches exige que o valor case com a expressão regular.
func (c *Collector) Matches(field, value string, re *regexp.Regexp) *Collector {
	return c.Check(field, re.MatchString(value), fmt.Sprintf("must match %s", re.String()))
}

// Struct valida as tags `validate` da struct e acumula cada violação como uma
// falha de campo.
func (c *Collector) Struct(v any) *Collector {
	err := c.valid.Struct(v)
	if err == nil {
		return c
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			c.fields = append(c.fields, FieldError{
				Field:  e.Field(),
				Reason: fmt.Sprintf("failed rule '%s'", e.Tag()),
			})
		}
		return c
	}
	c.fields = append(c.fields, FieldError{Field: "_struct", Reason: err.Error()})
	return c
}

// Empty informa se nenhuma falha foi registrada.
func (c *Collector) Empty() bool { return len(c.fields) == 0 }

// Err devolve nil ou um único *ValidationError com todas as falhas, na ordem
// em que foram registradas.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	out := make([]FieldError, len(c.fields))
	copy(out, c.fields)
	return &ValidationError{Fields: out}
}
