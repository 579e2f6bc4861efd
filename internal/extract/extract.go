// Package extract fetches the raw dataset, either from the UCI catalog or a
// local CSV file, parses it into a table and writes a raw snapshot next to
// the other run artifacts.
package extract

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"heartetl/internal/config"
	"heartetl/internal/datasource"
	"heartetl/internal/datasource/file"
	"heartetl/internal/datasource/httpds"
	"heartetl/internal/datasource/uci"
	"heartetl/internal/metrics"
	pcsv "heartetl/internal/parser/csv"
	"heartetl/internal/table"
)

// SnapshotName is the file written under data.raw_data_dir.
const SnapshotName = "heart_disease.csv"

// IDColumn names the row identifier column of the snapshot. A file source
// that carries it (for example an earlier snapshot) keeps its ids.
const IDColumn = "id"

// Result describes one extraction.
type Result struct {
	Table *table.Table

	// Dataset is the catalog entry; zero for a file source.
	Dataset uci.Dataset

	// Skipped counts malformed CSV lines that were dropped.
	Skipped int

	SnapshotPath string
}

// Option customizes Extract.
type Option func(*options)

type options struct {
	job  string
	http *httpds.Client
}

// WithJob sets the job label used for metrics.
func WithJob(job string) Option { return func(o *options) { o.job = job } }

// WithHTTPClient replaces the client built from cfg.HTTP.
func WithHTTPClient(c *httpds.Client) Option { return func(o *options) { o.http = c } }

// Extract reads the dataset described by cfg. For the uci source the
// catalog entry selects the columns: features first, then targets. A file
// source keeps every column of the file. Row ids are 0..n-1 unless the file
// has an id column.
func Extract(ctx context.Context, cfg config.Data, opts ...Option) (Result, error) {
	o := options{job: "extract"}
	for _, fn := range opts {
		fn(&o)
	}
	start := time.Now()

	var (
		res     Result
		src     datasource.Source
		columns []string
		idCol   string
		origin  string
	)
	switch cfg.DatasetSource {
	case "uci":
		hc := o.http
		if hc == nil {
			hc = httpds.NewClient(httpds.Config{
				Timeout:            cfg.HTTP.Timeout,
				MaxRetries:         cfg.HTTP.MaxRetries,
				InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
			})
		}
		d, err := uci.NewClient(hc, cfg.CatalogURL).Dataset(ctx, cfg.DatasetID)
		if err != nil {
			return Result{}, err
		}
		res.Dataset = d
		src = httpds.NewSource(hc, d.DataURL)
		for _, c := range d.Columns() {
			columns = append(columns, canonical(c, cfg.HeaderMap))
		}
		origin = fmt.Sprintf("uci id=%d (%s)", d.ID, d.Name)
	case "file":
		src = file.NewLocal(cfg.Path)
		idCol = IDColumn
		origin = cfg.Path
	default:
		return Result{}, fmt.Errorf("extract: unknown dataset_source %q", cfg.DatasetSource)
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("extract: open %s: %w", origin, err)
	}
	defer rc.Close()

	p := pcsv.NewParser(pcsv.Options{
		TrimSpace: true,
		HeaderMap: cfg.HeaderMap,
		IDColumn:  idCol,
	})
	t, skipped, err := p.Parse(rc)
	if err != nil {
		return Result{}, fmt.Errorf("extract: parse %s: %w", origin, err)
	}
	if len(columns) > 0 {
		if t, err = t.Project(columns...); err != nil {
			return Result{}, fmt.Errorf("extract: %s: data file does not match catalog: %w", origin, err)
		}
	}
	res.Table = t
	res.Skipped = skipped

	res.SnapshotPath, err = WriteSnapshot(cfg.RawDataDir, t)
	if err != nil {
		return Result{}, err
	}

	metrics.RecordRows(o.job, metrics.RowsExtracted, int64(t.Len()))
	log.Printf("extract: %s: rows=%d cols=%d skipped=%d snapshot=%s in %s",
		origin, t.Len(), t.Width(), skipped, res.SnapshotPath, time.Since(start).Round(time.Millisecond))
	return res, nil
}

// WriteSnapshot writes t with its ids to dir/SnapshotName, creating dir if
// needed. The file is written to a temporary name and renamed into place.
func WriteSnapshot(dir string, t *table.Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("extract: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, SnapshotName)

	f, err := os.CreateTemp(dir, SnapshotName+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("extract: snapshot: %w", err)
	}
	tmp := f.Name()
	if err := pcsv.Write(f, t, IDColumn); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("extract: write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("extract: close snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("extract: snapshot: %w", err)
	}
	return path, nil
}

// canonical maps a catalog variable name the same way the parser maps a
// header cell.
func canonical(name string, headerMap map[string]string) string {
	if m, ok := headerMap[name]; ok {
		return m
	}
	return pcsv.NormalizeHeader(name)
}
