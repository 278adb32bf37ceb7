// Command schema-sync keeps destination MySQL tables aligned with the
// schemas announced by an upstream extractor.
//
// By default it drains a newline-delimited message stream from stdin,
// creating tables and adding columns as SCHEMA messages arrive, and
// forwards STATE messages to stdout once the preceding messages are
// processed. With -catalog it instead prepares every stream listed in a
// catalog file and exits. With -dry-run the DDL is printed rather than
// executed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"targetmysql/internal/config"
	"targetmysql/internal/metrics"
	"targetmysql/internal/metrics/datadog"
	"targetmysql/internal/metrics/prompush"
	"targetmysql/internal/storage"

	// register all backends with the storage factory.
	_ "targetmysql/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		catalogPath       string
		dryRun            bool
		validate          bool
		metricsBackendFlg string
	)

	flag.StringVar(&cfgPath, "config", "config.json", "target config JSON path")
	flag.StringVar(&catalogPath, "catalog", "", "prepare all streams from this catalog file and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "print DDL to stdout instead of executing it")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend override (pushgateway, datadog, none)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateTarget(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError && !dryRun {
		fatalf("configuration is invalid: %v", cfgPath)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		return
	}

	job := cfg.Metrics.Options.String("job", "schema_sync")
	initMetrics(cfg, metricsBackendFlg, job)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo storage.Repository
	if dryRun {
		repo = &dryRunRepo{w: os.Stdout}
	} else {
		repo, err = storage.New(ctx, storage.Config{
			Kind:     cfg.Storage.Kind,
			DSN:      cfg.DSN,
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		})
		if err != nil {
			fatalf("open storage: %v", err)
		}
		defer repo.Close()
	}

	if catalogPath != "" {
		cat, err := loadCatalog(catalogPath)
		if err != nil {
			fatalf("%v", err)
		}
		if err := prepareCatalog(ctx, cfg, repo, cat, job); err != nil {
			fatalf("prepare catalog: %v", err)
		}
		return
	}

	// STATE goes to stdout; in dry-run mode the DDL shares it, which keeps
	// the output reviewable as one script-like transcript.
	if _, err := runSync(ctx, cfg, repo, os.Stdin, os.Stdout, job); err != nil {
		fatalf("sync: %v", err)
	}
}

// initMetrics installs the configured metrics backend. Flag beats config;
// unknown or empty selections keep the default no-op backend.
func initMetrics(cfg config.Target, override, job string) {
	backendName := override
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}

	switch backendName {
	case "pushgateway":
		gwURL := cfg.Metrics.Options.String("gateway_url", "")
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.Options.String("addr", ""),
			Namespace:  cfg.Metrics.Options.String("namespace", ""),
			GlobalTags: cfg.Metrics.Options.StringSlice("tags"),
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "", "none":
		// keep nop backend

	default:
		log.Printf("metrics: unknown backend %q; using nop", backendName)
	}
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}
