package ddl

import (
	"strings"
	"testing"
)

// bracketDialect quotes with [..] and maps every kind, like the SQL Server
// backend.
var bracketDialect = Dialect{
	Name:       "bracket ddl",
	QuoteIdent: func(s string) string { return "[" + s + "]" },
	MapType: func(k Kind) string {
		switch k {
		case KindInteger:
			return "BIGINT"
		case KindFloat:
			return "FLOAT"
		case KindBool:
			return "BIT"
		default:
			return "NVARCHAR(MAX)"
		}
	},
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		d       Dialect
		def     TableDef
		want    string
		wantErr string
	}{
		{
			name:    "empty FQN",
			d:       bracketDialect,
			def:     TableDef{FQN: "  ", Columns: []ColumnDef{{Name: "id", Kind: KindInteger}}},
			wantErr: "bracket ddl: table FQN must not be empty",
		},
		{
			name:    "no columns",
			d:       bracketDialect,
			def:     TableDef{FQN: "heart"},
			wantErr: "at least one column is required",
		},
		{
			name:    "column without name",
			d:       bracketDialect,
			def:     TableDef{FQN: "heart", Columns: []ColumnDef{{Name: " ", Kind: KindFloat}}},
			wantErr: "column with empty name in table heart",
		},
		{
			name:    "zero dialect needs SQLType",
			def:     TableDef{FQN: "heart", Columns: []ColumnDef{{Name: "chol", Kind: KindFloat}}},
			wantErr: "ddl: column chol missing SQLType",
		},
		{
			name: "zero dialect emits names verbatim",
			def: TableDef{FQN: " heart ", Columns: []ColumnDef{
				{Name: "id", SQLType: "INTEGER", PrimaryKey: true},
				{Name: "chol", SQLType: "REAL", Nullable: true},
			}},
			want: "CREATE TABLE heart (\n  id INTEGER NOT NULL,\n  chol REAL,\n  PRIMARY KEY (id)\n);",
		},
		{
			name: "cleaned heart table",
			d:    bracketDialect,
			def: TableDef{FQN: "dbo.heart_disease_clean", Columns: []ColumnDef{
				{Name: "id", Kind: KindInteger, PrimaryKey: true},
				{Name: "age", Kind: KindInteger, Nullable: true},
				{Name: "chol", Kind: KindFloat, Nullable: true},
				{Name: "missingindicator_chol", Kind: KindBool, Nullable: true},
			}},
			want: "CREATE TABLE [dbo].[heart_disease_clean] (\n" +
				"  [id] BIGINT NOT NULL,\n" +
				"  [age] BIGINT,\n" +
				"  [chol] FLOAT,\n" +
				"  [missingindicator_chol] BIT,\n" +
				"  PRIMARY KEY ([id])\n);",
		},
		{
			name: "explicit SQLType wins over MapType",
			d:    bracketDialect,
			def: TableDef{FQN: "heart", Columns: []ColumnDef{
				{Name: "thal", Kind: KindFloat, SQLType: "DECIMAL(3,1)", Nullable: true},
			}},
			want: "CREATE TABLE [heart] (\n  [thal] DECIMAL(3,1)\n);",
		},
		{
			name: "not null and default",
			d:    bracketDialect,
			def: TableDef{FQN: "heart", Columns: []ColumnDef{
				{Name: "num", Kind: KindInteger, Default: " 0 "},
			}},
			want: "CREATE TABLE [heart] (\n  [num] BIGINT NOT NULL DEFAULT 0\n);",
		},
		{
			name: "primary key forces NOT NULL and composes",
			d:    bracketDialect,
			def: TableDef{FQN: "heart", Columns: []ColumnDef{
				{Name: "run", Kind: KindText, PrimaryKey: true, Nullable: true},
				{Name: "id", Kind: KindInteger, PrimaryKey: true},
			}},
			want: "CREATE TABLE [heart] (\n" +
				"  [run] NVARCHAR(MAX) NOT NULL,\n" +
				"  [id] BIGINT NOT NULL,\n" +
				"  PRIMARY KEY ([run], [id])\n);",
		},
		{
			name: "empty FQN segments are dropped",
			d:    bracketDialect,
			def:  TableDef{FQN: "dbo..heart", Columns: []ColumnDef{{Name: "id", Kind: KindInteger}}},
			want: "CREATE TABLE [dbo].[heart] (\n  [id] BIGINT NOT NULL\n);",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.d.CreateTable(tt.def)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("CreateTable() err = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTable() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CreateTable() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

// sink keeps the compiler from optimizing the rendered statements away.
var sink string

// BenchmarkDialect_CreateTable renders the cleaned heart disease table: 14
// data columns plus an indicator for each simple-strategy column.
func BenchmarkDialect_CreateTable(b *testing.B) {
	cols := []ColumnDef{{Name: "id", Kind: KindInteger, PrimaryKey: true}}
	for _, n := range []string{"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalach", "exang", "oldpeak", "slope", "ca", "thal", "num"} {
		cols = append(cols, ColumnDef{Name: n, Kind: KindFloat, Nullable: true})
	}
	for _, n := range []string{"trestbps", "chol", "thalach", "oldpeak", "fbs", "restecg", "exang", "slope"} {
		cols = append(cols, ColumnDef{Name: "missingindicator_" + n, Kind: KindBool, Nullable: true})
	}
	def := TableDef{FQN: "dbo.heart_disease_clean", Columns: cols}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sql, err := bracketDialect.CreateTable(def)
		if err != nil {
			b.Fatalf("CreateTable() error = %v", err)
		}
		sink = sql
	}
}
