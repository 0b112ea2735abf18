// Package check varre uma tabela de documentos e verifica a consistência de
// cada item contra o esquema declarado nos entity mappers.
//
// A verificação roda em duas fases. Na primeira, os documentos são paginados
// da fonte e convertidos em paralelo (fan-out limitado) pelo mapper raiz,
// acumulando os problemas de conversão e de desvio de esquema de cada item.
// A segunda fase só começa depois que a primeira drenou por completo: com o
// universo de chaves em mãos, ela aplica as checagens agregadas, como a
// unicidade do `_id`.
//
// O resultado é um Report com os problemas individuais e agregados, pensado
// para execução periódica (cron, pipeline) via cmd/conscheck.
package check
