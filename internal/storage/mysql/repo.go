// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and github.com/go-sql-driver/mysql. Batches are written as a
// single multi-row INSERT inside a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	myddl "heartetl/internal/storage/mysql/ddl"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string // go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/db
	Table   string
	Columns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql ping %s: %w", mc.Addr, err)
	}
	return New(db, cfg), func() { _ = db.Close() }, nil
}

// New wraps an already-open database.
func New(db *sql.DB, cfg Config) *Repository { return &Repository{db: db, cfg: cfg} }

// CopyFrom writes rows with one multi-row INSERT in a transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: CopyFrom: row %d has %d values, want %d", i, len(row), len(columns))
		}
		args = append(args, row...)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	res, err := tx.ExecContext(ctx, insertSQL(r.cfg.Table, columns, len(rows)), args...)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return n, nil
}

// Exec executes a single statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

func insertSQL(table string, columns []string, nrows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myddl.Dialect.QuoteFQN(table), strings.Join(quoted, ", "))
	for i := 0; i < nrows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
	}
	return sb.String()
}
