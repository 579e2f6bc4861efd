// Package config defines the configuration model for the heart disease ETL
// and loads it from YAML.
//
// Example (trimmed):
//
//	job: heart_disease
//	data:
//	  raw_data_dir: data/raw
//	  dataset_source: uci
//	transform:
//	  handle_missing:
//	    strategies:
//	      median: [trestbps, chol, thalach, oldpeak]
//	      most_frequent: [fbs, restecg, exang, slope]
//	      knn: [ca, thal]
//	  remove_duplicates: true
//	  validate_types: true
//	load:
//	  kind: postgres
//	  host: localhost
//	  port: 5432
//	  dbname: heart
//	  user: etl
//	  db_table: heart_disease_clean
//
// Decoding starts from Default(), so omitted keys keep their defaults
// (remove_duplicates and validate_types default to true).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from the YAML config file.
type Pipeline struct {
	// Job names the run for logs and metrics grouping.
	Job string `yaml:"job"`

	Data      Data      `yaml:"data"`
	Transform Transform `yaml:"transform"`
	Load      Load      `yaml:"load"`
	Metrics   Metrics   `yaml:"metrics"`
}

// Data configures extraction.
type Data struct {
	// RawDataDir receives the raw snapshot heart_disease.csv.
	RawDataDir string `yaml:"raw_data_dir" validate:"required"`

	// DatasetSource selects the source: "uci" (remote catalog) or "file".
	DatasetSource string `yaml:"dataset_source" validate:"required,oneof=uci file"`

	// DatasetID is the catalog id of the dataset (45 = Heart Disease).
	DatasetID int `yaml:"dataset_id"`

	// CatalogURL is the base URL of the catalog API.
	CatalogURL string `yaml:"catalog_url" validate:"omitempty,url"`

	// Path is the local CSV used when DatasetSource is "file".
	Path string `yaml:"path" validate:"required_if=DatasetSource file"`

	// HeaderMap renames source headers to canonical column names.
	HeaderMap map[string]string `yaml:"header_map"`

	HTTP HTTP `yaml:"http"`
}

// HTTP tunes the catalog client.
type HTTP struct {
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries" validate:"gte=0"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// Transform configures the cleaning stage.
type Transform struct {
	HandleMissing    HandleMissing `yaml:"handle_missing"`
	RemoveDuplicates bool          `yaml:"remove_duplicates"`
	ValidateTypes    bool          `yaml:"validate_types"`
}

// HandleMissing configures imputation.
type HandleMissing struct {
	// Strategies maps strategy name to the columns it fills, in document
	// order.
	Strategies Strategies `yaml:"strategies"`

	KNN KNNOptions `yaml:"knn"`
}

// KNNOptions tunes the knn strategy.
type KNNOptions struct {
	// Neighbors is k; 0 selects the default of 5.
	Neighbors int `yaml:"neighbors"`

	// Weights is "uniform" (default) or "distance".
	Weights string `yaml:"weights"`

	// Workers bounds the goroutines used for knn; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Load configures the relational sink.
type Load struct {
	// Kind selects the storage backend: postgres (default), mysql, mssql or
	// sqlite.
	Kind     string `yaml:"kind" validate:"oneof=postgres mysql mssql sqlite"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	DBName   string `yaml:"dbname"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// DBTable is the destination table; it is replaced on every run.
	DBTable string `yaml:"db_table" validate:"required"`

	// DSN, when set, is used verbatim instead of the discrete fields.
	DSN string `yaml:"dsn"`

	// BatchSize is the number of rows per bulk insert.
	BatchSize int `yaml:"batch_size" validate:"gte=0"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway" or "datadog".
	Backend        string `yaml:"backend" validate:"omitempty,oneof=none pushgateway datadog"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	StatsdAddr     string `yaml:"statsd_addr"`
}

// Default returns a Pipeline with every default applied.
func Default() Pipeline {
	return Pipeline{
		Job: "heart_disease_etl",
		Data: Data{
			DatasetSource: "uci",
			DatasetID:     45,
			CatalogURL:    "https://archive.ics.uci.edu",
			HTTP: HTTP{
				Timeout:    30 * time.Second,
				MaxRetries: 3,
			},
		},
		Transform: Transform{
			HandleMissing: HandleMissing{
				KNN: KNNOptions{Neighbors: 5, Weights: "uniform"},
			},
			RemoveDuplicates: true,
			ValidateTypes:    true,
		},
		Load: Load{
			Kind:      "postgres",
			BatchSize: 500,
		},
		Metrics: Metrics{Backend: "none"},
	}
}

// Decode parses YAML on top of Default(). Decoding problems are returned as
// a *ConfigurationError.
func Decode(b []byte) (Pipeline, error) {
	p := Default()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Pipeline{}, &ConfigurationError{Issues: []Issue{{
			Severity: SeverityError,
			Path:     "",
			Message:  fmt.Sprintf("decode yaml: %v", err),
		}}}
	}
	return p, nil
}

// LoadFile reads the YAML file at path, loads a sibling .env file if present,
// applies ETL_* environment overrides and validates the result. Warnings are
// returned alongside a valid Pipeline; any error-severity issue yields a
// *ConfigurationError.
func LoadFile(path string) (Pipeline, []Issue, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, nil, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b)
	if err != nil {
		return Pipeline{}, nil, err
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return Pipeline{}, nil, err
	}
	ApplyEnv(&p, os.Getenv)

	issues := ValidatePipeline(p)
	if err := Check(issues); err != nil {
		return Pipeline{}, issues, err
	}
	return p, issues, nil
}
