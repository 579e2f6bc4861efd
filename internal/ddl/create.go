// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE and DROP TABLE statements from that model.
//
// A Dialect supplies identifier quoting and the logical-to-SQL type mapping;
// the zero Dialect emits identifiers verbatim and expects SQLType to be set.
// Backend packages (internal/storage/<kind>/ddl) each declare their Dialect.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect describes how a backend renders DDL.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string
	// QuoteIdent quotes one identifier segment. Nil emits it as-is.
	QuoteIdent func(string) string
	// MapType fills ColumnDef.SQLType when it is empty. Nil requires SQLType.
	MapType func(Kind) string
}

func (d Dialect) prefix() string {
	if d.Name == "" {
		return "ddl"
	}
	return d.Name
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment.
// Empty segments are ignored.
func (d Dialect) QuoteFQN(fqn string) string {
	if d.QuoteIdent == nil {
		return strings.TrimSpace(fqn)
	}
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

// CreateTable renders a CREATE TABLE statement for t.
//
// Rules:
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and a SQLType (given or mapped).
//   - Primary-key columns are always NOT NULL.
//   - PRIMARY KEY is rendered as a separate clause at the end.
func (d Dialect) CreateTable(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.prefix())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.prefix())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.prefix(), fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" && d.MapType != nil {
			typ = d.MapType(c.Kind)
		}
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.prefix(), name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		d.QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// DropTable renders DROP TABLE IF EXISTS for fqn.
func (d Dialect) DropTable(fqn string) (string, error) {
	if strings.TrimSpace(fqn) == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.prefix())
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteFQN(fqn)), nil
}
