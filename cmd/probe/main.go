package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"heartetl/internal/datasource"
	"heartetl/internal/datasource/file"
	"heartetl/internal/datasource/httpds"
	"heartetl/internal/datasource/uci"
	"heartetl/internal/probe"
	"heartetl/internal/schema"
)

// main profiles a heart disease CSV against the dataset schema and prints a
// per-column report, or with -yaml a starter handle_missing section for the
// pipeline config.
//
// The source is, in order of precedence, -path, -url or the catalog entry
// -dataset-id.
func main() {
	var (
		flagPath = flag.String(
			"path",
			"",
			"local CSV file to profile",
		)
		flagURL = flag.String(
			"url",
			"",
			"URL of a CSV file to profile",
		)
		flagDatasetID = flag.Int(
			"dataset-id",
			45,
			"UCI catalog id, used when neither -path nor -url is set",
		)
		flagCatalog = flag.String(
			"catalog-url",
			"https://archive.ics.uci.edu",
			"base URL of the UCI catalog API",
		)
		flagBytes = flag.Int(
			"bytes",
			0,
			"number of bytes to sample from the start of the file (0 = whole file)",
		)
		flagAllowInsecure = flag.Bool(
			"allow-insecure",
			false,
			"allow insecure certs",
		)
		flagYAML = flag.Bool(
			"yaml",
			false,
			"print the suggested strategies as YAML instead of the report",
		)
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	hc := httpds.NewClient(httpds.Config{InsecureSkipVerify: *flagAllowInsecure})

	var src datasource.Source
	switch {
	case *flagPath != "":
		src = file.NewLocal(*flagPath)
	case *flagURL != "":
		src = httpds.NewSource(hc, *flagURL)
	default:
		d, err := uci.NewClient(hc, *flagCatalog).Dataset(ctx, *flagDatasetID)
		if err != nil {
			fatalf("probe: %v", err)
		}
		log.Printf("probe: dataset %q (id=%d) data_url=%s", d.Name, d.ID, d.DataURL)
		src = httpds.NewSource(hc, d.DataURL)
	}

	rep, err := probe.Run(ctx, src, schema.HeartDisease(), probe.Options{Bytes: *flagBytes})
	if err != nil {
		fatalf("%v", err)
	}

	if *flagYAML {
		err = rep.WriteYAML(os.Stdout)
	} else {
		err = rep.WriteText(os.Stdout)
	}
	if err != nil {
		fatalf("write report: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
