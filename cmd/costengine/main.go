package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"

	"costengine/internal/config"
	"costengine/internal/engine"
	"costengine/internal/ingest"
	"costengine/internal/metrics"
	"costengine/internal/metrics/prompush"
	"costengine/internal/parser"
	"costengine/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "costengine/internal/storage/all"
)

// main is the entry point for the cost-engine binary. It loads the job
// config, optionally initializes a metrics backend, and runs every ingestion
// job against the configured store.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/jobs.json", "job config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (e.g. pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	cfg, err := config.Load(f)
	if err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → config → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		// Decide Pushgateway URL: flag → config → env → default.
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = cfg.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		jobName := cfg.Metrics.Job
		if jobName == "" {
			jobName = "cost_engine"
		}

		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	start := time.Now()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatalf("open storage: %v", err)
	}
	defer store.Close()

	eng, err := engine.New(ctx, store, logger)
	if err != nil {
		fatalf("init engine: %v", err)
	}

	if err := runJobs(ctx, eng, cfg.Jobs); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// runJobs executes the configured ingestions. Jobs targeting different
// entities run concurrently; jobs for the same entity run in file order so
// that replace-then-append sequences behave predictably.
func runJobs(ctx context.Context, eng *engine.Engine, jobs []config.Job) error {
	byKind := make(map[ingest.Kind][]config.Job)
	var order []ingest.Kind
	for _, j := range jobs {
		kind, ok := ingest.ParseKind(j.Kind)
		if !ok {
			return fmt.Errorf("job %q: unknown kind %q", j.Path, j.Kind)
		}
		if _, seen := byKind[kind]; !seen {
			order = append(order, kind)
		}
		byKind[kind] = append(byKind[kind], j)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range order {
		kind := kind
		batch := byKind[kind]
		g.Go(func() error {
			for _, j := range batch {
				if err := runJob(ctx, eng, kind, j); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func runJob(ctx context.Context, eng *engine.Engine, kind ingest.Kind, j config.Job) error {
	policy := storage.PolicyReplace
	if j.Policy != "" {
		var err error
		policy, err = storage.ParsePolicy(j.Policy)
		if err != nil {
			return fmt.Errorf("job %q: %w", j.Path, err)
		}
	}

	f, err := os.Open(j.Path)
	if err != nil {
		return fmt.Errorf("job %q: %w", j.Path, err)
	}
	defer f.Close()

	payload, err := parser.Parse(j.Path, f, parser.Options{Encoding: j.Encoding})
	if err != nil {
		return fmt.Errorf("job %q: %w", j.Path, err)
	}

	res, err := eng.Ingest(ctx, kind, payload, policy)
	if err != nil {
		return fmt.Errorf("job %q: %w", j.Path, err)
	}
	if !res.OK {
		log.Printf("job %q: rejected: %s", j.Path, res.Message)
		return nil
	}
	log.Printf("job %q: wrote %d rows (fingerprint %s)", j.Path, res.Rows, res.Fingerprint)
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
