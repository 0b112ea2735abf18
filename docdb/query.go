// docdb/query.go
package docdb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/docstore-toolkit/jsoncodec"
	"github.com/raywall/docstore-toolkit/mapper"
)

// QueryFilter — opção aplicável a um QueryBuilder
type QueryFilter func(*QueryBuilder)

// QueryBuilder — o builder fluente de consultas sobre documentos
type QueryBuilder struct {
	store       *docStore
	keyCond     *expression.KeyConditionBuilder
	filterCond  *expression.ConditionBuilder
	indexName   *string
	limit       *int32
	lastKey     map[string]types.AttributeValue
	scanForward *bool
	isScan      bool
	err         error
}

// Query inicia uma Query
func (s *docStore) Query() *QueryBuilder {
	return &QueryBuilder{
		store:       s,
		scanForward: aws.Bool(true),
	}
}

// Scan inicia um Scan
func (s *docStore) Scan() *QueryBuilder {
	return &QueryBuilder{
		store:  s,
		isScan: true,
	}
}

// === MÉTODOS FLUENTES ===

func (qb *QueryBuilder) Index(name string) *QueryBuilder {
	qb.indexName = aws.String(name)
	return qb
}

func (qb *QueryBuilder) KeyEqual(attribute string, value any) *QueryBuilder {
	cond := expression.KeyEqual(expression.Key(attribute), expression.Value(value))
	if qb.keyCond == nil {
		qb.keyCond = &cond
	} else {
		tmp := qb.keyCond.And(cond)
		qb.keyCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder) KeyBeginsWith(attribute, prefix string) *QueryBuilder {
	cond := expression.Key(attribute).BeginsWith(prefix)
	if qb.keyCond == nil {
		qb.keyCond = &cond
	} else {
		tmp := qb.keyCond.And(cond)
		qb.keyCond = &tmp
	}
	return qb
}

// FilterEqual filtra pela igualdade de um campo mapeado. O valor é informado
// no domínio da entidade e convertido para a forma armazenada pelo mapper do
// próprio campo.
func (qb *QueryBuilder) FilterEqual(f *mapper.Field, value any) *QueryBuilder {
	stored, err := qb.stored(f, value)
	if err != nil {
		return qb
	}
	cond := expression.Equal(expression.Name(f.Name()), expression.Value(stored))
	return qb.andFilter(cond)
}

// FilterContains filtra documentos cuja coleção mapeada contém o valor.
func (qb *QueryBuilder) FilterContains(f *mapper.Field, value any) *QueryBuilder {
	stored, err := qb.stored(f, value)
	if err != nil {
		return qb
	}
	cond := expression.Contains(expression.Name(f.Name()), stored)
	return qb.andFilter(cond)
}

// FilterType restringe a consulta aos documentos carimbados com o
// discriminador da entidade informada.
func (qb *QueryBuilder) FilterType(m *mapper.EntityMapper) *QueryBuilder {
	cond := expression.Equal(expression.Name(mapper.FieldType), expression.Value(m.Discriminator()))
	return qb.andFilter(cond)
}

func (qb *QueryBuilder) Limit(n int32) *QueryBuilder {
	qb.limit = &n
	return qb
}

func (qb *QueryBuilder) LastKey(token string) *QueryBuilder {
	if token == "" {
		return qb
	}
	lastKey, err := decodePageToken(token)
	if err != nil {
		qb.fail(err)
		return qb
	}
	qb.lastKey = lastKey
	return qb
}

// Apply aplica filtros funcionais ao builder
func (qb *QueryBuilder) Apply(filters ...QueryFilter) *QueryBuilder {
	for _, f := range filters {
		f(qb)
	}
	return qb
}

func WithIndex(name string) QueryFilter {
	return func(qb *QueryBuilder) { qb.indexName = aws.String(name) }
}

func WithLimit(n int32) QueryFilter {
	return func(qb *QueryBuilder) { qb.limit = &n }
}

func WithScanForward(forward bool) QueryFilter {
	return func(qb *QueryBuilder) { qb.scanForward = &forward }
}

func (qb *QueryBuilder) andFilter(cond expression.ConditionBuilder) *QueryBuilder {
	if qb.filterCond == nil {
		qb.filterCond = &cond
	} else {
		tmp := qb.filterCond.And(cond)
		qb.filterCond = &tmp
	}
	return qb
}

func (qb *QueryBuilder) stored(f *mapper.Field, value any) (any, error) {
	if f == nil {
		err := fmt.Errorf("docdb: nil field in filter")
		qb.fail(err)
		return nil, err
	}
	stored, err := f.Mapper().ToDB(value)
	if err != nil {
		err = fmt.Errorf("docdb: filter value for %q: %w", f.Name(), err)
		qb.fail(err)
		return nil, err
	}
	return stored, nil
}

func (qb *QueryBuilder) fail(err error) {
	if qb.err == nil {
		qb.err = err
	}
}

// Exec executa a consulta
func (qb *QueryBuilder) Exec(ctx context.Context) ([]mapper.Document, string, error) {
	if qb.err != nil {
		return nil, "", qb.err
	}

	// O builder do SDK rejeita um Build sem nenhuma condição; uma varredura
	// sem filtros segue com a expressão vazia.
	var expr expression.Expression
	if qb.keyCond != nil || qb.filterCond != nil {
		builder := expression.NewBuilder()
		if qb.keyCond != nil {
			builder = builder.WithKeyCondition(*qb.keyCond)
		}
		if qb.filterCond != nil {
			builder = builder.WithFilter(*qb.filterCond)
		}

		var err error
		if expr, err = builder.Build(); err != nil {
			return nil, "", fmt.Errorf("docdb: build expression failed: %w", err)
		}
	}

	if qb.isScan || qb.keyCond == nil {
		return qb.execScan(ctx, expr)
	}
	return qb.execQuery(ctx, expr)
}

func (qb *QueryBuilder) execQuery(ctx context.Context, expr expression.Expression) ([]mapper.Document, string, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(qb.store.cfg.TableName),
		IndexName:                 qb.indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     qb.limit,
		ScanIndexForward:          qb.scanForward,
		ExclusiveStartKey:         qb.lastKey,
		ConsistentRead:            aws.Bool(qb.store.cfg.ConsistentRead && qb.indexName == nil),
	}

	out, err := qb.store.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("docdb: query failed: %w", err)
	}
	return unmarshalResults(out.Items, out.LastEvaluatedKey)
}

func (qb *QueryBuilder) execScan(ctx context.Context, expr expression.Expression) ([]mapper.Document, string, error) {
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(qb.store.cfg.TableName),
		IndexName:                 qb.indexName,
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     qb.limit,
		ExclusiveStartKey:         qb.lastKey,
	}

	out, err := qb.store.client.Scan(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("docdb: scan failed: %w", err)
	}
	return unmarshalResults(out.Items, out.LastEvaluatedKey)
}

func unmarshalResults(
	items []map[string]types.AttributeValue,
	lastKey map[string]types.AttributeValue,
) ([]mapper.Document, string, error) {
	result := make([]mapper.Document, 0, len(items))
	for _, item := range items {
		doc, err := UnmarshalItem(item)
		if err != nil {
			return nil, "", err
		}
		result = append(result, doc)
	}

	token, err := encodePageToken(lastKey)
	if err != nil {
		return nil, "", err
	}
	return result, token, nil
}

// encodePageToken serializa a LastEvaluatedKey como documento JSON em Base64,
// para que o chamador continue a paginação sem conhecer o SDK.
func encodePageToken(lastKey map[string]types.AttributeValue) (string, error) {
	if lastKey == nil {
		return "", nil
	}
	doc, err := UnmarshalItem(lastKey)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// decodePageToken reconstrói a LastEvaluatedKey. Números inteiros voltam como
// int64 pela normalização do jsoncodec; atributos de chave binários não
// sobrevivem ao trânsito por JSON e não são suportados em tokens de página.
func decodePageToken(token string) (map[string]types.AttributeValue, error) {
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("docdb: invalid page token: %w", err)
	}
	doc, err := jsoncodec.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("docdb: invalid page token: %w", err)
	}
	return MarshalDocument(doc)
}
