// Package docdb fornece o armazenamento de documentos mapeados sobre o
// AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// O pacote `docdb` oferece a interface `Store`, que persiste e recupera
// documentos genéricos (mapper.Document) produzidos pelos entity mappers,
// eliminando a necessidade de lidar diretamente com os tipos de baixo nível
// do SDK do DynamoDB (AttributeValue, etc.).
//
// A principal característica é o `QueryBuilder`, que permite construir
// consultas (`Query` e `Scan`) de forma fluente usando os próprios campos
// declarados no mapper (`*mapper.Field`), abstraindo as Expression Builders
// do SDK.
//
// Funcionalidades Principais:
// - CRUD de documentos: `Find`, `Insert`, `Update`, `Remove` sobre mapper.Document.
// - Carimbo automático: toda escrita grava `_modified` com o instante corrente.
// - Builder Fluente: `Query().KeyEqual(...).FilterEqual(field, ...).Exec(...)`.
// - Paginação Automática: conversão de `LastEvaluatedKey` em tokens Base64.
// - Mocks Integrados: `MockStore` e `MockClient` para testes unitários fáceis.
//
// Exemplos de Uso:
//
// Exemplo básico de Store e CRUD:
//
//	cfg := docdb.StoreConfig{TableName: "users", KeyAttribute: "_id"}
//	store, err := docdb.New(client, cfg)
//	if err != nil { /* ... */ }
//
//	doc, err := userMapper.ToDB(user)
//	if err != nil { /* ... */ }
//	_ = store.Insert(ctx, doc.(mapper.Document))
//
//	found, err := store.Find(ctx, user.ID.String())
//	if err == docdb.ErrNotFound { /* ... */ }
//
// Exemplo de consulta fluente com campos do mapper:
//
//	name, _ := userMapper.FieldByName("name")
//	docs, token, err := store.Scan().
//		FilterEqual(name, "maria").
//		Limit(50).
//		Exec(ctx)
//
// Configuração:
// O Store é configurado via `StoreConfig` ou usando variáveis de ambiente
// (DOCSTORE_TABLE_NAME, DOCSTORE_KEY_ATTRIBUTE, DOCSTORE_CONSISTENT_READ).
package docdb
