package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/raywall/docstore-toolkit/docdb"
	"github.com/raywall/docstore-toolkit/docdb/check"
	"github.com/raywall/docstore-toolkit/mapper"
	"github.com/raywall/docstore-toolkit/pkg/config"
	"github.com/raywall/docstore-toolkit/pkg/logger"
	"github.com/raywall/docstore-toolkit/pkg/metrics"
)

var (
	// Variáveis injetáveis para mocking
	sourceFactory = newDynamoSource

	// Esquema raiz usado para o round-trip de conversão. Binários que embutem
	// o checker substituem schemaFn pelo mapper da sua coleção; o default nil
	// limita a varredura às checagens estruturais e agregadas.
	schemaFn func() (*mapper.EntityMapper, []*mapper.Field, error)
)

func main() {
	configPath := flag.String("config", "", "Caminho do arquivo YAML de configuração")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("CONSCHECK_CONFIG")
	}
	if *configPath == "" {
		log.Fatalln("FATAL: informe -config ou a variável CONSCHECK_CONFIG")
	}

	report, err := run(context.Background(), *configPath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if !report.Clean() {
		os.Exit(1)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) (*check.Report, error) {
	// 1. Carrega e valida a configuração
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// 2. Inicializa logging e métricas
	zl := logger.Configure(cfg.Checker.Logging)
	zl = logger.For(zl, cfg.Checker.Name)

	stats, err := metrics.Setup(cfg.Checker.Metrics)
	if err != nil {
		return nil, err
	}

	// 3. Timeout global da varredura (opcional)
	if cfg.Checker.Timeout != "" {
		d, err := time.ParseDuration(cfg.Checker.Timeout)
		if err != nil {
			return nil, fmt.Errorf("conscheck: timeout inválido: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	// 4. Fonte de documentos
	source, err := sourceFactory(ctx, cfg.Checker.Table)
	if err != nil {
		return nil, err
	}

	// 5. Esquema da coleção (se registrado)
	var root *mapper.EntityMapper
	var unique []*mapper.Field
	if schemaFn != nil {
		if root, unique, err = schemaFn(); err != nil {
			return nil, fmt.Errorf("conscheck: falha ao montar o esquema: %w", err)
		}
	}

	// 6. Executa a varredura
	chk := check.New(root, source, check.Config{
		Workers:      cfg.Checker.Workers,
		PageSize:     cfg.Checker.PageSize,
		UniqueFields: unique,
	}, zl, stats)

	return chk.Run(ctx)
}

// newDynamoSource monta o Store do DynamoDB a partir da configuração da tabela.
func newDynamoSource(ctx context.Context, table config.TableConf) (check.Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if table.Region != "" {
		opts = append(opts, awsconfig.WithRegion(table.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("conscheck: falha ao carregar credenciais AWS: %w", err)
	}

	return docdb.New(dynamodb.NewFromConfig(awsCfg), docdb.StoreConfig{
		TableName:      table.Name,
		KeyAttribute:   table.KeyAttribute,
		ConsistentRead: table.ConsistentRead,
	})
}
