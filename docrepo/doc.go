/*
Package docrepo fornece uma abstração genérica para o padrão Service-Repository
sobre o armazenamento de documentos mapeados (docdb + mapper).

O objetivo deste pacote é reduzir o boilerplate em serviços Go, entregando:
  - Conversão entidade⇄documento automática via entity mappers registrados.
  - Validação de entrada automática via struct tags (validator/v10).
  - Operações CRUD padronizadas com suporte a Generics e hooks de persistência.

Exemplo de uso:

	type User struct {
		ID    mapper.Ref
		Email string `validate:"required,email"`
	}

	service, _ := docrepo.NewService[User](registry, store,
		func(u *User) any { return u.ID.String() })
	err := service.Create(ctx, &User{ID: mapper.NewRef(), Email: "test@example.com"})
*/
package docrepo
