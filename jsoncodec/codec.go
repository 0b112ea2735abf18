// Package jsoncodec converte documentos genéricos (mapper.Document) de e para
// JSON, normalizando os números para as formas que os value mappers esperam:
// inteiros como int64 e fracionários como float64.
//
// O pacote também oferece um extrator de caminhos no estilo JSONPath para
// inspecionar documentos sem materializar entidades.
package jsoncodec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/raywall/docstore-toolkit/mapper"
)

// UnmarshalDocument decodifica bytes JSON em um mapper.Document.
func UnmarshalDocument(data []byte) (mapper.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jsoncodec: erro ao fazer parse do JSON: %w", err)
	}

	doc, err := normalizeObject(raw)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// MarshalDocument serializa um documento como JSON compacto.
func MarshalDocument(doc mapper.Document) ([]byte, error) {
	return json.Marshal(doc)
}

// MarshalDocumentIndent serializa um documento como JSON formatado.
func MarshalDocumentIndent(doc mapper.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func normalizeObject(raw map[string]interface{}) (mapper.Document, error) {
	doc := make(mapper.Document, len(raw))
	for k, v := range raw {
		nv, err := normalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("jsoncodec: campo %q: %w", k, err)
		}
		doc[k] = nv
	}
	return doc, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("número inválido %q", t.String())
		}
		return f, nil
	case map[string]interface{}:
		return normalizeObject(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, el := range t {
			nv, err := normalizeValue(el)
			if err != nil {
				return nil, fmt.Errorf("elemento %d: %w", i, err)
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}
