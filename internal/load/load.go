// Package load writes a cleaned table into the configured relational store,
// replacing any table of the same name.
package load

import (
	"context"
	"fmt"
	"iter"
	"log"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"heartetl/internal/config"
	"heartetl/internal/ddl"
	"heartetl/internal/metrics"
	"heartetl/internal/storage"
	"heartetl/internal/table"
)

// IDColumn is the name under which row identifiers are stored. It is the
// primary key of the loaded table.
const IDColumn = "id"

// DefaultBatchSize is used when the configuration leaves batch_size at 0.
const DefaultBatchSize = 500

var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
	"mssql":    1433,
}

// Result reports what a load wrote.
type Result struct {
	Table   string
	Rows    int64
	Batches int64
}

// Option customizes Load.
type Option func(*options)

type options struct {
	job string
}

// WithJob sets the job label used for metrics.
func WithJob(job string) Option { return func(o *options) { o.job = job } }

// DSN returns the connection string for cfg. An explicit cfg.DSN wins;
// otherwise one is assembled from host, port, dbname, user and password in
// the form the backend's driver expects.
func DSN(cfg config.Load) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPorts[cfg.Kind]
	}
	hostport := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	switch cfg.Kind {
	case "postgres":
		u := url.URL{Scheme: "postgres", Host: hostport, Path: "/" + cfg.DBName}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = hostport
		mc.DBName = cfg.DBName
		return mc.FormatDSN(), nil
	case "mssql":
		u := url.URL{Scheme: "sqlserver", Host: hostport, RawQuery: url.Values{"database": {cfg.DBName}}.Encode()}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil
	case "sqlite":
		if strings.TrimSpace(cfg.DBName) == "" {
			return "", fmt.Errorf("load: sqlite needs dsn or dbname")
		}
		return cfg.DBName, nil
	default:
		return "", fmt.Errorf("load: unsupported kind %q", cfg.Kind)
	}
}

// Load replaces cfg.DBTable with the contents of t. Row identifiers are
// written to IDColumn. The backend for cfg.Kind must have been registered,
// usually by importing heartetl/internal/storage/all.
func Load(ctx context.Context, t *table.Table, cfg config.Load, opts ...Option) (Result, error) {
	o := options{job: "heart_disease_etl"}
	for _, opt := range opts {
		opt(&o)
	}

	dsn, err := DSN(cfg)
	if err != nil {
		return Result{}, err
	}
	def, err := ddl.FromTable(cfg.DBTable, t, IDColumn)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}
	cols := def.Names()

	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Kind, DSN: dsn, Table: cfg.DBTable, Columns: cols})
	if err != nil {
		log.Printf("load: connect %s failed: %v", cfg.Kind, err)
		return Result{}, fmt.Errorf("load: connect %s: %w", cfg.Kind, err)
	}
	defer repo.Close()

	if err := storage.ReplaceTable(ctx, cfg.Kind, repo, def); err != nil {
		log.Printf("load: replace table %s failed: %v", cfg.DBTable, err)
		return Result{}, fmt.Errorf("load: replace table %s: %w", cfg.DBTable, err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	// The feeder must stop when LoadBatches returns early on a copy error.
	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	st, err := storage.LoadBatches(ctx, cols, storage.Feed(feedCtx, rows(t)), batch, repo.CopyFrom)
	metrics.RecordBatches(o.job, st.Batches)
	if err != nil {
		log.Printf("load: write %s failed after %d rows: %v", cfg.DBTable, st.Rows, err)
		return Result{Table: cfg.DBTable, Rows: st.Rows, Batches: st.Batches}, fmt.Errorf("load: write %s: %w", cfg.DBTable, err)
	}
	metrics.RecordRows(o.job, metrics.RowsLoaded, st.Rows)
	log.Printf("load: table %s written (%s): rows=%d batches=%d in %s", cfg.DBTable, cfg.Kind, st.Rows, st.Batches, st.Elapsed)

	return Result{Table: cfg.DBTable, Rows: st.Rows, Batches: st.Batches}, nil
}

// rows yields each row of t prefixed with its identifier.
func rows(t *table.Table) iter.Seq[[]any] {
	return func(yield func([]any) bool) {
		for i := 0; i < t.Len(); i++ {
			r := make([]any, 0, t.Width()+1)
			r = append(r, t.RowID(i))
			r = append(r, t.Row(i)...)
			if !yield(r) {
				return
			}
		}
	}
}
