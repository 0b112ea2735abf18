package check

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/raywall/docstore-toolkit/mapper"
	"github.com/raywall/docstore-toolkit/pkg/metrics"
)

// Source entrega páginas de documentos. docdb.Store satisfaz a interface.
type Source interface {
	FindAll(ctx context.Context, token string, limit int32) ([]mapper.Document, string, error)
}

// Config controla o paralelismo, a paginação e as checagens agregadas da
// varredura.
type Config struct {
	Workers  int
	PageSize int32

	// UniqueFields declara campos mapeados cujos valores armazenados devem
	// ser únicos na tabela inteira.
	UniqueFields []*mapper.Field
}

// Tipos de problema reportados.
const (
	KindMissingID      = "missing_id"
	KindDuplicateID    = "duplicate_id"
	KindDuplicateValue = "duplicate_value"
	KindConversion     = "conversion"
	KindDrift          = "schema_drift"
)

// Issue descreve um problema encontrado em um documento.
type Issue struct {
	DocumentID string
	Kind       string
	Detail     string
}

// Report consolida o resultado de uma varredura completa.
type Report struct {
	Scanned  int
	Pages    int
	Issues   []Issue
	Duration time.Duration
}

// Clean informa se a varredura terminou sem nenhum problema.
func (r *Report) Clean() bool { return len(r.Issues) == 0 }

// CountByKind conta os problemas de um tipo específico.
func (r *Report) CountByKind(kind string) int {
	n := 0
	for _, is := range r.Issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}

// Checker executa a verificação de consistência de uma tabela de documentos.
type Checker struct {
	root   *mapper.EntityMapper
	source Source
	cfg    Config
	log    zerolog.Logger
	stats  metrics.Provider
}

// New cria um Checker. Workers e PageSize zerados assumem 4 e 100. Um root
// nulo restringe a varredura às checagens estruturais e agregadas.
func New(root *mapper.EntityMapper, source Source, cfg Config, log zerolog.Logger, stats metrics.Provider) *Checker {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if stats == nil {
		stats = &metrics.NoopProvider{}
	}
	return &Checker{
		root:   root,
		source: source,
		cfg:    cfg,
		log:    log,
		stats:  stats,
	}
}

// Run varre a fonte inteira. A fase de conversão roda com fan-out limitado a
// cfg.Workers e é drenada por completo antes das checagens agregadas.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}

	var mu sync.Mutex
	idCount := make(map[string]int)
	valueCount := make(map[string]map[string]int, len(c.cfg.UniqueFields))
	for _, f := range c.cfg.UniqueFields {
		valueCount[f.Name()] = make(map[string]int)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	token := ""
	for {
		docs, next, err := c.source.FindAll(gctx, token, c.cfg.PageSize)
		if err != nil {
			_ = g.Wait()
			return nil, fmt.Errorf("check: page fetch failed: %w", err)
		}
		report.Pages++

		for _, doc := range docs {
			doc := doc
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				id, issues := c.checkDocument(doc)

				mu.Lock()
				report.Scanned++
				if id != "" {
					idCount[id]++
				}
				for _, f := range c.cfg.UniqueFields {
					if v, ok := doc[f.Name()]; ok && v != nil {
						valueCount[f.Name()][fmt.Sprintf("%v", v)]++
					}
				}
				report.Issues = append(report.Issues, issues...)
				mu.Unlock()
				return nil
			})
		}

		if next == "" {
			break
		}
		token = next
	}

	// Barreira entre as fases: nada agregado antes da drenagem completa.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.checkUniqueness(idCount, report)
	c.checkUniqueFields(valueCount, report)

	report.Duration = time.Since(start)
	c.publish(report)
	return report, nil
}

// checkDocument valida um único documento: presença da chave e round-trip de
// conversão pelo mapper raiz.
func (c *Checker) checkDocument(doc mapper.Document) (string, []Issue) {
	var issues []Issue

	id := ""
	raw, ok := doc[mapper.FieldID]
	if !ok || raw == nil {
		issues = append(issues, Issue{Kind: KindMissingID, Detail: "document has no _id attribute"})
	} else {
		id = fmt.Sprintf("%v", raw)
	}

	// Sem mapper raiz o checker roda apenas as checagens estruturais.
	if c.root != nil {
		var errs mapper.ErrorList
		entity := c.root.FromDBWithErrors(doc, &errs)
		for _, e := range errs.Errors() {
			kind := KindConversion
			if e.Kind == mapper.ErrNotMapped {
				kind = KindDrift
			}
			issues = append(issues, Issue{DocumentID: id, Kind: kind, Detail: e.Error()})
		}
		if entity == nil && errs.Empty() {
			issues = append(issues, Issue{DocumentID: id, Kind: KindConversion, Detail: "document produced no entity"})
		}
	}

	for _, is := range issues {
		c.log.Warn().
			Str("document_id", is.DocumentID).
			Str("kind", is.Kind).
			Msg(is.Detail)
	}
	return id, issues
}

// checkUniqueness roda sobre o universo completo de chaves coletado na
// primeira fase.
func (c *Checker) checkUniqueness(idCount map[string]int, report *Report) {
	dups := make([]string, 0)
	for id, n := range idCount {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)

	for _, id := range dups {
		report.Issues = append(report.Issues, Issue{
			DocumentID: id,
			Kind:       KindDuplicateID,
			Detail:     fmt.Sprintf("document id appears %d times", idCount[id]),
		})
	}
}

// checkUniqueFields aplica a unicidade declarada por campo sobre os valores
// armazenados coletados na primeira fase.
func (c *Checker) checkUniqueFields(valueCount map[string]map[string]int, report *Report) {
	names := make([]string, 0, len(valueCount))
	for name := range valueCount {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := make([]string, 0)
		for v, n := range valueCount[name] {
			if n > 1 {
				values = append(values, v)
			}
		}
		sort.Strings(values)
		for _, v := range values {
			report.Issues = append(report.Issues, Issue{
				Kind:   KindDuplicateValue,
				Detail: fmt.Sprintf("field %q value %q appears %d times", name, v, valueCount[name][v]),
			})
		}
	}
}

func (c *Checker) publish(report *Report) {
	_ = c.stats.Count(metrics.MetricDocumentsScanned, float64(report.Scanned), nil)
	_ = c.stats.Count(metrics.MetricIssuesFound, float64(len(report.Issues)), nil)
	_ = c.stats.Count(metrics.MetricPagesFetched, float64(report.Pages), nil)
	_ = c.stats.Histogram(metrics.MetricRunDuration, float64(report.Duration.Milliseconds()), nil)

	c.log.Info().
		Int("scanned", report.Scanned).
		Int("pages", report.Pages).
		Int("issues", len(report.Issues)).
		Dur("duration", report.Duration).
		Msg("consistency check finished")
}
