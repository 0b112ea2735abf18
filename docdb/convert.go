// docdb/convert.go
package docdb

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/docstore-toolkit/mapper"
)

// MarshalDocument converte um mapper.Document para o formato de item do
// DynamoDB. Valores nulos são omitidos do item (a ausência da chave é a
// representação canônica de nulo).
func MarshalDocument(doc mapper.Document) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		av, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("docdb: marshal attribute %q failed: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

// UnmarshalItem converte um item do DynamoDB de volta para mapper.Document.
// Números inteiros voltam como int64 e fracionários como float64, preservando
// a forma que os value mappers esperam.
func UnmarshalItem(item map[string]types.AttributeValue) (mapper.Document, error) {
	doc := make(mapper.Document, len(item))
	for k, av := range item {
		v, err := unmarshalValue(av)
		if err != nil {
			return nil, fmt.Errorf("docdb: unmarshal attribute %q failed: %w", k, err)
		}
		if v == nil {
			continue
		}
		doc[k] = v
	}
	return doc, nil
}

func marshalValue(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case mapper.Document:
		m, err := MarshalDocument(t)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case map[string]any:
		return marshalValue(mapper.Document(t))
	case []any:
		list := make([]types.AttributeValue, 0, len(t))
		for i, el := range t {
			if el == nil {
				continue
			}
			av, err := marshalValue(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	default:
		// Escalas (string, inteiros, float, bool, []byte) via SDK.
		return attributevalue.Marshal(v)
	}
}

func unmarshalValue(av types.AttributeValue) (any, error) {
	switch t := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberS:
		return t.Value, nil
	case *types.AttributeValueMemberBOOL:
		return t.Value, nil
	case *types.AttributeValueMemberB:
		return t.Value, nil
	case *types.AttributeValueMemberN:
		if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.Value)
		}
		return f, nil
	case *types.AttributeValueMemberL:
		out := make([]any, 0, len(t.Value))
		for i, el := range t.Value {
			v, err := unmarshalValue(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case *types.AttributeValueMemberM:
		return UnmarshalItem(t.Value)
	case *types.AttributeValueMemberSS:
		out := make([]any, 0, len(t.Value))
		for _, s := range t.Value {
			out = append(out, s)
		}
		return out, nil
	case *types.AttributeValueMemberNS:
		out := make([]any, 0, len(t.Value))
		for _, s := range t.Value {
			v, err := unmarshalValue(&types.AttributeValueMemberN{Value: s})
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", av)
	}
}

// attr converte qualquer valor para types.AttributeValue
func attr(v any) types.AttributeValue {
	if v == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	av, err := marshalValue(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}
