package probe

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"heartetl/internal/config"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = cellStyle.Foreground(lipgloss.Color("#E5A50A"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// WriteText renders the report as a bordered table followed by a summary
// line. Columns with violations are highlighted.
func (r Report) WriteText(w io.Writer) error {
	rows := make([][]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		rows = append(rows, []string{
			c.Name,
			string(c.Kind),
			strconv.Itoa(c.Nulls),
			strconv.Itoa(c.Distinct),
			formatBound(c.Min),
			formatBound(c.Max),
			inSchema(c.InSchema),
			strconv.Itoa(c.Violations),
			c.Strategy,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("column", "kind", "nulls", "distinct", "min", "max", "schema", "violations", "suggest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(r.Columns) && r.Columns[row].Violations > 0 {
				return warnStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	summary := fmt.Sprintf("rows=%d skipped=%d columns=%d", r.Rows, r.Skipped, len(r.Columns))
	if len(r.Missing) > 0 {
		summary += fmt.Sprintf(" missing=%v", r.Missing)
	}
	_, err := fmt.Fprintln(w, mutedStyle.Render(summary))
	return err
}

// WriteYAML writes the suggested strategies as a transform section that can
// be pasted into the pipeline config.
func (r Report) WriteYAML(w io.Writer) error {
	var doc struct {
		Transform struct {
			HandleMissing struct {
				Strategies config.Strategies `yaml:"strategies"`
			} `yaml:"handle_missing"`
		} `yaml:"transform"`
	}
	doc.Transform.HandleMissing.Strategies = r.Strategies()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("probe: encode yaml: %w", err)
	}
	return enc.Close()
}

func formatBound(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func inSchema(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
