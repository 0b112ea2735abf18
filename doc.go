// Package docstore_toolkit fornece um motor de mapeamento objeto-documento
// para Go, com persistência em DynamoDB, verificação de consistência e um
// conjunto de utilitários de configuração e observabilidade.
//
// Visão Geral:
// Este módulo separa o modelo de domínio (structs e interfaces Go) da forma
// armazenada (documentos chave-valor), fornecendo soluções modulares para:
// 1. Mapeamento (mapper): campos com closures de acesso, polimorfismo por
// discriminador, herança de super-entidades e janelas de versão.
// 2. Persistência (docdb): Store orientado a documentos sobre DynamoDB, com
// QueryBuilder, paginação por token e mocks.
// 3. Consistência (docdb/check): varredura em duas fases de uma coleção,
// com checagens por registro e agregadas.
// 4. Repositório (docrepo): Service genérico combinando mapper, docdb,
// validação e hooks de ciclo de vida.
//
// O design é focado na composabilidade e testabilidade, utilizando interfaces
// e genéricos para garantir tipagem segura e fácil mocking.
//
// Sub-Pacotes Principais:
//
// 1. mapper:
//   - ValueMapper para valores primitivos (string, inteiros, moeda, URL,
//     enum, coleções) e EntityMapper para entidades completas.
//   - Registry com detecção de ciclos de herança e resolução polimórfica
//     memoizada; acumulação de erros por campo sem abortar o documento.
//
// 2. docdb:
//   - Store de documentos (Find, Insert, Update, Remove, Query, Scan).
//   - Inserção e atualização condicionais, carimbo _modified e paginação
//     por token opaco.
//
// 3. docrepo:
//   - Service[T] com validação go-playground/validator e hooks BeforeCreate
//     e BeforeUpdate.
//
// Exemplo de Início Rápido:
//
// Demonstração da combinação de mapper e docdb para um repositório simples.
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/raywall/docstore-toolkit/docdb"
//		"github.com/raywall/docstore-toolkit/mapper"
//	)
//
//	type User struct {
//		ID   string
//		Name string
//	}
//
//	func main() {
//		// 1. Declarar o mapeamento campo a campo
//		userMapper := mapper.NewEntity[User]("",
//			mapper.NewField("name", mapper.String,
//				func(u *User) string { return u.Name },
//				func(u *User, v string) *User { u.Name = v; return u }),
//		)
//
//		reg := mapper.NewRegistry()
//		if err := reg.Register(userMapper); err != nil {
//			log.Fatalf("Erro no esquema: %v", err)
//		}
//
//		// 2. Inicializar o Store
//		// client := dynamodb.NewFromConfig(awsConfig) // Assumindo awsConfig configurado
//		client := &docdb.MockClient{} // Usando mock para o exemplo simples
//		store, err := docdb.New(client, docdb.StoreConfig{TableName: "users"})
//		if err != nil {
//			log.Fatalf("Erro na configuração: %v", err)
//		}
//
//		// 3. Converter e persistir
//		raw, err := userMapper.ToDB(&User{ID: "user-123", Name: "Ana"})
//		if err != nil {
//			log.Fatalf("Erro de conversão: %v", err)
//		}
//		doc := raw.(mapper.Document)
//		doc[mapper.FieldID] = "user-123"
//
//		if err := store.Insert(context.Background(), doc); err != nil {
//			log.Fatalf("Erro ao inserir: %v", err)
//		}
//	}
package docstore_toolkit
