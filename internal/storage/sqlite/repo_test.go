package sqlite

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gddl "heartetl/internal/ddl"
	"heartetl/internal/storage"
)

/*
Package-level test helpers (TB-aware)
*/

func newRepo(tb testing.TB, table string, cols ...string) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:", Table: table, Columns: cols})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func heartDef(table string) gddl.TableDef {
	return gddl.TableDef{FQN: table, Columns: []gddl.ColumnDef{
		{Name: "id", Kind: gddl.KindInteger, PrimaryKey: true},
		{Name: "chol", Kind: gddl.KindFloat, Nullable: true},
		{Name: "thal", Kind: gddl.KindFloat, Nullable: true},
		{Name: "missingindicator_chol", Kind: gddl.KindBool, Nullable: true},
	}}
}

/*
Unit tests
*/

// TestReplaceAndCopyFrom_RoundTrip replaces the table twice (the second run
// must drop the first), loads rows and reads them back.
func TestReplaceAndCopyFrom_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cols := []string{"id", "chol", "thal", "missingindicator_chol"}
	r := newRepo(t, "heart_disease", cols...)

	for i := 0; i < 2; i++ {
		if err := storage.ReplaceTable(ctx, "sqlite", &wrappedRepo{Repository: r}, heartDef("heart_disease")); err != nil {
			t.Fatalf("ReplaceTable #%d: %v", i, err)
		}
		if i == 0 {
			if _, err := r.CopyFrom(ctx, cols, [][]any{{int64(99), 1.0, nil, false}}); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
	}

	rows := [][]any{
		{int64(0), 233.0, 6.0, false},
		{int64(1), 246.25, nil, true},
	}
	n, err := r.CopyFrom(ctx, cols, rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("CopyFrom affected: got %d want 2", n)
	}

	var got []string
	q, err := r.DB().QueryContext(ctx, `SELECT id, chol, thal, missingindicator_chol FROM heart_disease ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer q.Close()
	for q.Next() {
		var (
			id   int64
			chol float64
			thal *float64
			ind  bool
		)
		if err := q.Scan(&id, &chol, &thal, &ind); err != nil {
			t.Fatalf("scan: %v", err)
		}
		th := "NULL"
		if thal != nil {
			th = fmt.Sprint(*thal)
		}
		got = append(got, fmt.Sprintf("%d|%v|%s|%v", id, chol, th, ind))
	}
	if err := q.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := "0|233|6|false,1|246.25|NULL|true"
	if strings.Join(got, ",") != want {
		t.Fatalf("rows = %v, want %s (old seed row must be gone)", got, want)
	}
}

func TestCopyFrom_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRepo(t, "t", "id")
	if err := r.Exec(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	if _, err := r.CopyFrom(ctx, nil, [][]any{{1}}); err == nil {
		t.Fatal("empty columns: expected error")
	}
	if n, err := r.CopyFrom(ctx, []string{"id"}, nil); err != nil || n != 0 {
		t.Fatalf("no rows: n=%d err=%v", n, err)
	}
	if _, err := r.CopyFrom(ctx, []string{"id"}, [][]any{{1, 2}}); err == nil {
		t.Fatal("ragged row: expected error")
	}
	// duplicate primary key rolls back the whole batch
	if _, err := r.CopyFrom(ctx, []string{"id"}, [][]any{{1}, {1}}); err == nil {
		t.Fatal("duplicate key: expected error")
	}
	var count int
	if err := r.DB().QueryRow(`SELECT COUNT(*) FROM t`).Scan(&count); err != nil || count != 0 {
		t.Fatalf("count = %d, err = %v; want rolled back", count, err)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInsertSQL_QuotesIdentifiers(t *testing.T) {
	t.Parallel()

	got := insertSQL("main.heart", []string{"id", `we"ird`})
	want := `INSERT INTO "main"."heart" ("id", "we""ird") VALUES (?, ?)`
	if got != want {
		t.Fatalf("insertSQL = %s, want %s", got, want)
	}
}

/*
Benchmarks
*/

// BenchmarkSqlite_CopyFrom measures the transaction + prepared statement path.
func BenchmarkSqlite_CopyFrom(b *testing.B) {
	ctx := context.Background()
	cols := []string{"id", "chol", "thal", "missingindicator_chol"}
	r := newRepo(b, "bench", cols...)

	const batch = 256
	rows := make([][]any, batch)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := storage.ReplaceTable(ctx, "sqlite", &wrappedRepo{Repository: r}, heartDef("bench")); err != nil {
			b.Fatal(err)
		}
		for j := range rows {
			rows[j] = []any{int64(j), 240.0, 3.0, false}
		}
		if _, err := r.CopyFrom(ctx, cols, rows); err != nil {
			b.Fatal(err)
		}
	}
}
