package config

// CheckerConfig representa a estrutura raiz do arquivo YAML do verificador de
// consistência.
type CheckerConfig struct {
	Version string         `yaml:"version" validate:"required"`
	Checker CheckerDetails `yaml:"checker" validate:"required"`
}

// CheckerDetails contém os metadados e configurações de runtime do verificador.
type CheckerDetails struct {
	Name     string      `yaml:"name" validate:"required,hostname_rfc1123"`
	Table    TableConf   `yaml:"table" validate:"required"`
	Workers  int         `yaml:"workers" validate:"gte=0,lte=256"`
	PageSize int32       `yaml:"page_size" validate:"gte=0,lte=1000"`
	Timeout  string      `yaml:"timeout"` // Ex: "30s", "5m"
	Logging  LoggingConf `yaml:"logging"`
	Metrics  MetricsConf `yaml:"metrics"`
}

// TableConf aponta para a tabela de documentos verificada.
type TableConf struct {
	Name           string `yaml:"name" validate:"required"`
	KeyAttribute   string `yaml:"key_attribute"`
	ConsistentRead bool   `yaml:"consistent_read"`
	Region         string `yaml:"region" env:"AWS_REGION"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace"`
}
