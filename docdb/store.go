// docdb/store.go
package docdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/raywall/docstore-toolkit/envloader"
	"github.com/raywall/docstore-toolkit/mapper"
)

// Store — interface principal de persistência de documentos
type Store interface {
	Find(ctx context.Context, id any) (mapper.Document, error)
	FindAll(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error)
	Insert(ctx context.Context, doc mapper.Document) error
	Update(ctx context.Context, doc mapper.Document) error
	Remove(ctx context.Context, id any) error
	Count(ctx context.Context) (int64, error)

	Query() *QueryBuilder
	Scan() *QueryBuilder
}

type docStore struct {
	client Client
	cfg    StoreConfig
	now    func() time.Time
}

// New cria um store reutilizável. Campos vazios da configuração são
// preenchidos a partir das variáveis de ambiente.
func New(client Client, cfg StoreConfig) (Store, error) {
	if cfg.TableName == "" || cfg.KeyAttribute == "" {
		if err := envloader.Load(&cfg); err != nil {
			return nil, fmt.Errorf("docdb: load store config: %w", err)
		}
	}
	if cfg.KeyAttribute == "" {
		cfg.KeyAttribute = mapper.FieldID
	}

	return &docStore{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}, nil
}

// Find busca um documento pela chave primária
func (s *docStore) Find(ctx context.Context, id any) (mapper.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(s.cfg.ConsistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("docdb: find failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	return UnmarshalItem(out.Item)
}

// FindAll pagina todos os documentos da tabela. token vazio inicia do começo;
// o token devolvido continua a partir da última chave avaliada.
func (s *docStore) FindAll(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error) {
	qb := s.Scan().LastKey(token)
	if limit > 0 {
		qb = qb.Limit(limit)
	}
	return qb.Exec(ctx)
}

// Insert grava um documento novo, carimbando `_modified` com o instante
// corrente. Falha com ErrDuplicateID se a chave já existe.
func (s *docStore) Insert(ctx context.Context, doc mapper.Document) error {
	return s.put(ctx, doc, false)
}

// Update regrava um documento existente, carimbando `_modified`. Falha com
// ErrNotFound se a chave não existe.
func (s *docStore) Update(ctx context.Context, doc mapper.Document) error {
	return s.put(ctx, doc, true)
}

func (s *docStore) put(ctx context.Context, doc mapper.Document, mustExist bool) error {
	if doc == nil {
		return fmt.Errorf("docdb: nil document")
	}
	if _, ok := doc[s.cfg.KeyAttribute]; !ok {
		return fmt.Errorf("docdb: document has no %q attribute", s.cfg.KeyAttribute)
	}

	stamped := make(mapper.Document, len(doc)+1)
	for k, v := range doc {
		stamped[k] = v
	}
	stamped[mapper.FieldModified] = s.now().UTC().UnixMilli()

	item, err := MarshalDocument(stamped)
	if err != nil {
		return err
	}

	var cond expression.ConditionBuilder
	if mustExist {
		cond = expression.AttributeExists(expression.Name(s.cfg.KeyAttribute))
	} else {
		cond = expression.AttributeNotExists(expression.Name(s.cfg.KeyAttribute))
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("docdb: build condition failed: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.cfg.TableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditional *types.ConditionalCheckFailedException
		if errors.As(err, &conditional) {
			if mustExist {
				return ErrNotFound
			}
			return ErrDuplicateID
		}
		return fmt.Errorf("docdb: put failed: %w", err)
	}
	return nil
}

// Remove apaga um documento pela chave primária
func (s *docStore) Remove(ctx context.Context, id any) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.cfg.TableName),
		Key:       s.key(id),
	})
	if err != nil {
		return fmt.Errorf("docdb: remove failed: %w", err)
	}
	return nil
}

// Count conta os documentos da tabela via Scan em modo COUNT, seguindo a
// paginação até o fim.
func (s *docStore) Count(ctx context.Context) (int64, error) {
	var total int64
	var lastKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.cfg.TableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return 0, fmt.Errorf("docdb: count failed: %w", err)
		}
		total += int64(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}

func (s *docStore) key(id any) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		s.cfg.KeyAttribute: attr(id),
	}
}
