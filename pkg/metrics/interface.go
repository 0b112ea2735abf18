package metrics

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas publicadas pelo verificador de consistência.
const (
	MetricDocumentsScanned = "checker.documents_scanned"
	MetricIssuesFound      = "checker.issues_found"
	MetricRunDuration      = "checker.run_duration_ms"
	MetricPagesFetched     = "checker.pages_fetched"
)
