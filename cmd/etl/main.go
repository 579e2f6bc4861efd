package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"heartetl/internal/config"
	"heartetl/internal/etl"
	"heartetl/internal/metrics"
	"heartetl/internal/metrics/datadog"
	"heartetl/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "heartetl/internal/storage/all"
)

// main is the entry point for the ETL binary. It loads the YAML config,
// optionally initializes a metrics backend, and executes one batch run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/config.yaml", "pipeline config YAML path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use: pushgateway, datadog or none (overrides config and env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides config and env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address (overrides config and env STATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	log.SetOutput(os.Stderr)
	if !*verbose {
		log.SetFlags(log.LstdFlags)
	} else {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	}

	p, issues, err := config.LoadFile(cfgPath)
	printIssues(os.Stderr, issues)
	if err != nil {
		if !config.IsConfigurationError(err) {
			fatalf("%v", err)
		}
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	runID := uuid.NewString()

	// Decide metrics backend: flag → env → config.
	backendName := firstNonEmpty(metricsBackendFlg, os.Getenv("METRICS_BACKEND"), p.Metrics.Backend)
	switch backendName {
	case "pushgateway":
		gwURL := firstNonEmpty(pushGatewayURLFlg, os.Getenv("PUSHGATEWAY_URL"), p.Metrics.PushgatewayURL, "http://localhost:9091")
		b, err := prompush.NewBackend(p.Job, gwURL, prompush.WithGrouping("run_id", runID))
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			break
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, p.Job)
		metrics.SetBackend(b)

	case "datadog":
		addr := firstNonEmpty(statsdAddrFlg, os.Getenv("STATSD_ADDR"), p.Metrics.StatsdAddr)
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "heart.",
			GlobalTags: []string{"run_id:" + runID},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			break
		}
		log.Printf("metrics: addr=%v, backend=%v", addr, backendName)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	_, runErr := etl.Run(ctx, p, etl.WithRunID(runID))

	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
	if runErr != nil {
		fatalf("pipeline: run_id=%s failed: %v", runID, runErr)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

func printIssues(w io.Writer, issues []config.Issue) {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
