package ddl

import (
	"testing"

	gddl "heartetl/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind gddl.Kind
		want string
	}{
		{gddl.KindInteger, "BIGINT"},
		{gddl.KindFloat, "DOUBLE PRECISION"},
		{gddl.KindBool, "BOOLEAN"},
		{gddl.KindText, "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Fatalf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "public.heart_disease",
		Columns: []gddl.ColumnDef{
			{Name: "id", Kind: gddl.KindInteger, PrimaryKey: true},
			{Name: "chol", Kind: gddl.KindFloat, Nullable: true},
			{Name: `odd"name`, Kind: gddl.KindBool, Nullable: true},
		},
	}
	got, err := Dialect.CreateTable(def)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	want := "CREATE TABLE \"public\".\"heart_disease\" (\n" +
		"  \"id\" BIGINT NOT NULL,\n" +
		"  \"chol\" DOUBLE PRECISION,\n" +
		"  \"odd\"\"name\" BOOLEAN,\n" +
		"  PRIMARY KEY (\"id\")\n);"
	if got != want {
		t.Fatalf("CreateTable() =\n%s\nwant:\n%s", got, want)
	}

	drop, _ := Dialect.DropTable("public.heart_disease")
	if drop != `DROP TABLE IF EXISTS "public"."heart_disease";` {
		t.Fatalf("DropTable() = %s", drop)
	}
}
