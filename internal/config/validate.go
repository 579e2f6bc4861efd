// This file adds a linter/validator for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "load.kind",
// "transform.handle_missing.strategies.mean"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ConfigurationError carries the error-severity issues that made a
// configuration unusable.
type ConfigurationError struct {
	Issues []Issue
}

func (e *ConfigurationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		msgs = append(msgs, iss.Error())
	}
	return "configuration error: " + strings.Join(msgs, "; ")
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Check returns a *ConfigurationError holding the error-severity issues, or
// nil when there are none. Warnings never fail.
func Check(issues []Issue) error {
	var errs []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ConfigurationError{Issues: errs}
}

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

// validate returns a shared validator that reports fields by their yaml
// names so Issue paths match the config file.
func validate() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	p, err := config.Decode(b)
//	if err != nil { ... }
//	for _, iss := range config.ValidatePipeline(p) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, structIssues(p)...)
	issues = append(issues, validateData(p.Data)...)
	issues = append(issues, ValidateTransform(p.Transform)...)
	issues = append(issues, validateLoad(p.Load)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

// structIssues converts struct tag violations into Issues.
func structIssues(p Pipeline) []Issue {
	err := validate().Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path,
			Message:  tagMessage(fe),
		})
	}
	return issues
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), strings.Replace(fe.Param(), " ", " is ", 1))
	case "oneof":
		return fmt.Sprintf("%s=%v; must be one of [%s]", fe.Field(), fe.Value(), fe.Param())
	case "url":
		return fmt.Sprintf("%s=%v is not a valid URL", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s=%v fails %s %s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
}

func validateData(d Data) []Issue {
	var issues []Issue
	if d.DatasetSource == "uci" && d.DatasetID <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data.dataset_id",
			Message:  fmt.Sprintf("dataset_id=%d; the uci source needs a positive catalog id", d.DatasetID),
		})
	}
	if d.DatasetSource == "file" && d.CatalogURL != "" && d.CatalogURL != Default().Data.CatalogURL {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "data.catalog_url",
			Message:  "catalog_url is ignored by the file source",
		})
	}
	return issues
}

// ValidateTransform checks the transform section on its own. It enforces:
//   - every strategy name is known;
//   - no column is listed twice within one strategy;
//   - the simple strategies (mean, median, most_frequent) are pairwise
//     disjoint;
//   - knn options are sane.
//
// A column listed under both a simple strategy and knn is only a warning:
// the simple strategy fills it first, so knn has nothing left to do.
func ValidateTransform(t Transform) []Issue {
	var issues []Issue

	owner := make(map[string]string)
	for _, g := range t.HandleMissing.Strategies {
		path := "transform.handle_missing.strategies." + g.Strategy
		if !KnownStrategy(g.Strategy) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message: fmt.Sprintf("unknown strategy %q; must be one of [%s %s %s %s]",
					g.Strategy, StrategyMean, StrategyMedian, StrategyMostFrequent, StrategyKNN),
			})
			continue
		}
		if len(g.Columns) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  "strategy lists no columns; it will be skipped",
			})
		}

		seen := make(map[string]bool, len(g.Columns))
		for _, c := range g.Columns {
			if strings.TrimSpace(c) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  "column name must not be empty",
				})
				continue
			}
			if seen[c] {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  fmt.Sprintf("column %q listed twice", c),
				})
				continue
			}
			seen[c] = true

			prev, taken := owner[c]
			switch {
			case !taken:
				owner[c] = g.Strategy
			case SimpleStrategy(prev) && SimpleStrategy(g.Strategy):
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  fmt.Sprintf("column %q is already imputed by %s; strategies must not overlap", c, prev),
				})
			default:
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path,
					Message:  fmt.Sprintf("column %q is also listed under %s; knn will find no missing values in it", c, prev),
				})
			}
		}
	}

	knn := t.HandleMissing.KNN
	if t.HandleMissing.Strategies.Columns(StrategyKNN) != nil {
		if knn.Neighbors < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "transform.handle_missing.knn.neighbors",
				Message:  fmt.Sprintf("neighbors=%d; must be positive, or 0 for the default of 5", knn.Neighbors),
			})
		}
	}
	switch knn.Weights {
	case "", "uniform", "distance":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.handle_missing.knn.weights",
			Message:  fmt.Sprintf("weights=%q; must be uniform or distance", knn.Weights),
		})
	}
	if knn.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.handle_missing.knn.workers",
			Message:  "workers must not be negative",
		})
	}

	return issues
}

func validateLoad(l Load) []Issue {
	var issues []Issue

	if strings.TrimSpace(l.DSN) == "" && l.Kind != "sqlite" {
		if strings.TrimSpace(l.Host) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.host",
				Message:  "load.host must not be empty when no dsn is given",
			})
		}
		if strings.TrimSpace(l.DBName) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "load.dbname",
				Message:  "load.dbname must not be empty when no dsn is given",
			})
		}
	}
	if l.Kind == "sqlite" && strings.TrimSpace(l.DSN) == "" && strings.TrimSpace(l.DBName) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "load.dbname",
			Message:  "sqlite needs a dsn or a dbname (file path)",
		})
	}
	if l.BatchSize == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "load.batch_size",
			Message:  "batch_size=0; the default of 500 rows per batch is used",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.statsd_addr",
				Message:  "statsd_addr is empty; the client default 127.0.0.1:8125 will be used",
			})
		}
	}
	return issues
}
