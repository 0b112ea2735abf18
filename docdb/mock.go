// docdb/mock.go
package docdb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/raywall/docstore-toolkit/mapper"
)

// MockStore é um mock completo e fácil de usar para testes da interface Store.
//
// Ele expõe campos de função (`FindFn`, `InsertFn`, etc.) que podem ser
// definidos para simular o comportamento desejado do armazenamento durante os
// testes.
type MockStore struct {
	FindFn    func(ctx context.Context, id any) (mapper.Document, error)
	FindAllFn func(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error)
	InsertFn  func(ctx context.Context, doc mapper.Document) error
	UpdateFn  func(ctx context.Context, doc mapper.Document) error
	RemoveFn  func(ctx context.Context, id any) error
	CountFn   func(ctx context.Context) (int64, error)
	QueryFn   func() *QueryBuilder
	ScanFn    func() *QueryBuilder
}

func (m *MockStore) Find(ctx context.Context, id any) (mapper.Document, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) FindAll(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error) {
	if m.FindAllFn != nil {
		return m.FindAllFn(ctx, token, limit)
	}
	return nil, "", nil
}

func (m *MockStore) Insert(ctx context.Context, doc mapper.Document) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, doc)
	}
	return nil
}

func (m *MockStore) Update(ctx context.Context, doc mapper.Document) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, doc)
	}
	return nil
}

func (m *MockStore) Remove(ctx context.Context, id any) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, id)
	}
	return nil
}

func (m *MockStore) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

func (m *MockStore) Query() *QueryBuilder {
	if m.QueryFn != nil {
		return m.QueryFn()
	}
	return &QueryBuilder{}
}

func (m *MockStore) Scan() *QueryBuilder {
	if m.ScanFn != nil {
		return m.ScanFn()
	}
	return &QueryBuilder{isScan: true}
}

// MockClient é um mock para a interface Client de baixo nível.
//
// Permite testar a lógica interna do `docStore` sem tocar no AWS SDK.
type MockClient struct {
	GetItemFn    func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItemFn    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItemFn func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	QueryFn      func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	ScanFn       func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

func (m *MockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *MockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.PutItemFn != nil {
		return m.PutItemFn(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *MockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *MockClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *MockClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, params, optFns...)
	}
	return &dynamodb.ScanOutput{}, nil
}
