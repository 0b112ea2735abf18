// docdb/types.go
package docdb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ErrNotFound – erro padrão quando o documento não existe
var ErrNotFound = errors.New("docdb: document not found")

// ErrDuplicateID – erro padrão quando um Insert colide com um documento existente
var ErrDuplicateID = errors.New("docdb: document id already exists")

// Client interface para abstrair o cliente DynamoDB
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// StoreConfig — configuração da tabela de documentos
type StoreConfig struct {
	TableName      string `env:"DOCSTORE_TABLE_NAME"`
	KeyAttribute   string `env:"DOCSTORE_KEY_ATTRIBUTE" envDefault:"_id"`
	ConsistentRead bool   `env:"DOCSTORE_CONSISTENT_READ"`
}
