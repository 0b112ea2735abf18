// Package mapper fornece um motor declarativo de mapeamento objeto⇄documento
// para bancos de dados orientados a documentos.
//
// Visão Geral:
// O pacote converte entidades de domínio tipadas para uma representação
// semiestruturada (Document: mapa de chaves string para valores primitivos,
// documentos aninhados e arrays) e vice-versa, sem marshalling automático por
// tags: o esquema é declarado explicitamente, campo a campo, com closures de
// acesso resolvidas uma única vez.
//
// Funcionalidades Principais:
//   - Value Mappers: conversores bidirecionais para primitivos (string,
//     inteiros, double, boolean, binário, moeda, locale, URL, referências,
//     enumerações, datas e dinheiro).
//   - CollectionMapper: sequências ordenadas sobre qualquer value mapper, com
//     leitura tolerante (escalar promovido a lista, null vira lista vazia).
//   - Field: vínculo imutável entre uma chave do documento e uma propriedade
//     da entidade, com janela de versão opcional.
//   - EntityMapper: esquema de uma entidade com herança por composição
//     (super-entidades), discriminador polimórfico e validação estrutural na
//     inicialização.
//   - Registry: catálogo explícito de mappers, construído no startup;
//     resolução memoizada do mapper mais específico por tipo de runtime.
//
// Tratamento de Erros:
// Defeitos estruturais de declaração (SchemaError) são fatais e detectados na
// inicialização. Defeitos de dados (Error) são acumulados por conversão em um
// ErrorList e reportados agrupados em um ConversionError; o chamador decide se
// a lista é fatal ou apenas diagnóstica.
//
// Exemplo de Uso:
//
//	type User struct {
//		Name  string
//		Email string
//	}
//
//	userMapper := mapper.NewEntity[User]("user",
//		mapper.NewField("name", mapper.String,
//			func(u *User) string { return u.Name },
//			func(u *User, v string) *User { u.Name = v; return u }),
//		mapper.NewField("email", mapper.String,
//			func(u *User) string { return u.Email },
//			func(u *User, v string) *User { u.Email = v; return u }),
//	)
//
//	reg := mapper.NewRegistry()
//	if err := reg.Register(userMapper); err != nil {
//		log.Fatal(err) // erro de esquema: falhar no startup
//	}
//
//	doc, _ := userMapper.ToDB(&User{Name: "Ana", Email: "ana@example.com"})
//	back, _ := userMapper.FromDB(doc)
package mapper
