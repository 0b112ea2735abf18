package main

import (
	"context"
	"os"
	"testing"

	"github.com/raywall/docstore-toolkit/docdb"
	"github.com/raywall/docstore-toolkit/docdb/check"
	"github.com/raywall/docstore-toolkit/mapper"
	"github.com/raywall/docstore-toolkit/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmp, err := os.CreateTemp("", "conscheck_test_*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(tmp.Name()) })
	tmp.WriteString(content)
	tmp.Close()
	return tmp.Name()
}

func TestRun_StructuralScan(t *testing.T) {
	// 1. Cria Configuração Válida Temporária
	path := writeConfig(t, `
version: "1.0"
checker:
  name: "conscheck-test"
  table: {name: "documents"}
  workers: 2
  page_size: 10
  logging: {level: "error", format: "json"}
  metrics: {datadog: {enabled: false}}
`)

	// 2. Mock da fonte para não tocar a AWS
	originalFactory := sourceFactory
	var seenTable string
	sourceFactory = func(ctx context.Context, table config.TableConf) (check.Source, error) {
		seenTable = table.Name
		return &docdb.MockStore{
			FindAllFn: func(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error) {
				return []mapper.Document{
					{"_id": "a1", "name": "ana"},
					{"_id": "a2", "name": "bia"},
				}, "", nil
			},
		}, nil
	}
	defer func() { sourceFactory = originalFactory }()

	// 3. Executa a função run isolada
	report, err := run(context.Background(), path)

	// 4. Validações
	if err != nil {
		t.Fatalf("Erro na execução do run: %v", err)
	}
	if seenTable != "documents" {
		t.Errorf("Configuração da tabela não repassada. Nome: %s", seenTable)
	}
	if report.Scanned != 2 {
		t.Errorf("Esperava 2 documentos varridos, obteve %d", report.Scanned)
	}
	if !report.Clean() {
		t.Errorf("Relatório deveria estar limpo: %+v", report.Issues)
	}
}

func TestRun_SchemaRoundTrip(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
checker:
  name: "conscheck-test"
  table: {name: "documents"}
  logging: {level: "error", format: "json"}
  metrics: {datadog: {enabled: false}}
`)

	type profile struct {
		Name string
	}

	originalSchema := schemaFn
	schemaFn = func() (*mapper.EntityMapper, []*mapper.Field, error) {
		m := mapper.NewEntity[profile]("profile",
			mapper.NewField("name", mapper.String,
				func(p *profile) string { return p.Name },
				func(p *profile, v string) *profile { p.Name = v; return p }),
		)
		if err := mapper.NewRegistry().Register(m); err != nil {
			return nil, nil, err
		}
		return m, nil, nil
	}
	defer func() { schemaFn = originalSchema }()

	originalFactory := sourceFactory
	sourceFactory = func(ctx context.Context, table config.TableConf) (check.Source, error) {
		return &docdb.MockStore{
			FindAllFn: func(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error) {
				return []mapper.Document{
					{"_id": "p1", "name": "jose"},
					{"_id": "p2", "name": int64(42)}, // tipo errado
				}, "", nil
			},
		}, nil
	}
	defer func() { sourceFactory = originalFactory }()

	report, err := run(context.Background(), path)
	if err != nil {
		t.Fatalf("Erro na execução do run: %v", err)
	}
	if report.CountByKind(check.KindConversion) != 1 {
		t.Errorf("Esperava 1 problema de conversão, relatório: %+v", report.Issues)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
checker:
  name: "conscheck-test"
  table: {}
`)

	if _, err := run(context.Background(), path); err == nil {
		t.Error("Configuração sem tabela deveria falhar")
	}
}
