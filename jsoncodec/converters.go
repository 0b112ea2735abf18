package jsoncodec

import (
	"fmt"
	"reflect"

	"github.com/raywall/docstore-toolkit/mapper"
)

// ConvertFunc transforma um valor na sua representação serializável.
type ConvertFunc func(v interface{}) (interface{}, error)

// Codec serializa documentos aplicando conversores registrados por tipo de
// runtime antes do encoding/json. Valores sem conversor seguem intactos.
//
// O caso típico é registrar tipos de domínio que vazam para dentro de
// documentos em memória (time.Time, uuid, structs próprias) e precisam de uma
// forma textual estável no dump.
type Codec struct {
	converters map[reflect.Type]ConvertFunc
}

// NewCodec cria um codec sem conversores.
func NewCodec() *Codec {
	return &Codec{converters: make(map[reflect.Type]ConvertFunc)}
}

// Register associa um conversor ao tipo de runtime de sample.
func (c *Codec) Register(sample interface{}, fn ConvertFunc) *Codec {
	c.converters[reflect.TypeOf(sample)] = fn
	return c
}

// Marshal serializa o documento com os conversores aplicados recursivamente.
func (c *Codec) Marshal(doc mapper.Document) ([]byte, error) {
	converted, err := c.convertObject(doc)
	if err != nil {
		return nil, err
	}
	return MarshalDocument(converted)
}

// MarshalIndent é a variante formatada de Marshal.
func (c *Codec) MarshalIndent(doc mapper.Document) ([]byte, error) {
	converted, err := c.convertObject(doc)
	if err != nil {
		return nil, err
	}
	return MarshalDocumentIndent(converted)
}

// Unmarshal decodifica bytes JSON com a normalização numérica padrão.
func (c *Codec) Unmarshal(data []byte) (mapper.Document, error) {
	return UnmarshalDocument(data)
}

func (c *Codec) convertObject(doc mapper.Document) (mapper.Document, error) {
	out := make(mapper.Document, len(doc))
	for k, v := range doc {
		cv, err := c.convertValue(v)
		if err != nil {
			return nil, fmt.Errorf("jsoncodec: campo %q: %w", k, err)
		}
		out[k] = cv
	}
	return out, nil
}

func (c *Codec) convertValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if fn, ok := c.converters[reflect.TypeOf(v)]; ok {
		converted, err := fn(v)
		if err != nil {
			return nil, err
		}
		return converted, nil
	}
	switch t := v.(type) {
	case mapper.Document:
		return c.convertObject(t)
	case map[string]interface{}:
		return c.convertObject(mapper.Document(t))
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, el := range t {
			cv, err := c.convertValue(el)
			if err != nil {
				return nil, fmt.Errorf("elemento %d: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	default:
		return v, nil
	}
}
