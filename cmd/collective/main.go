// Command collective runs the reference workloads over a process group.
//
// In local mode the whole group runs in this process, one goroutine per
// participant over an in-process store. In nats mode this process is one
// participant; start one process per rank against the same NATS server and
// run id.
//
//	collective -mode local -workload vecsum -size 4
//	collective -mode nats -workload matvec -size 4 -rank 0 -run-id job-7
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/collective"
	"github.com/arloliu/collective/internal/logging"
	"github.com/arloliu/collective/internal/metrics"
	"github.com/arloliu/collective/kernel"
	"github.com/arloliu/collective/transport"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

type options struct {
	configPath  string
	mode        string
	workload    string
	length      int
	rank        int
	size        int
	runID       string
	host        string
	natsURL     string
	metricsAddr string
	logLevel    string
	timeout     time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitConfig
	}

	logger := logging.NewText(stderr, opts.logLevel)

	cfg, err := loadConfig(opts)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "collective")
	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer shutdown()
	}

	switch opts.mode {
	case "local":
		err = runLocal(ctx, cfg, opts, collector, logger, stdout)
	case "nats":
		err = runNATS(ctx, cfg, opts, collector, logger, stdout)
	default:
		err = fmt.Errorf("%w: unknown mode %q", collective.ErrInvalidConfig, opts.mode)
	}

	if err != nil {
		logger.Error("run failed", "mode", opts.mode, "workload", opts.workload, "error", err)
		return exitCode(err)
	}

	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("collective", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	fs.StringVar(&opts.mode, "mode", "local", "Run mode: local (whole group in-process) or nats (one participant)")
	fs.StringVar(&opts.workload, "workload", kernel.VectorSumName, "Workload: vecsum or matvec")
	fs.IntVar(&opts.length, "length", 0, "Dataset length (default 48 for vecsum, 16 for matvec)")
	fs.IntVar(&opts.rank, "rank", transport.ClaimRank, "Participant rank in nats mode (-1 claims a free rank)")
	fs.IntVar(&opts.size, "size", 4, "Number of participants")
	fs.StringVar(&opts.runID, "run-id", "", "Run id shared by all participants (default: config value, random in local mode)")
	fs.StringVar(&opts.host, "host", "", "Host label reported by this participant (default: hostname)")
	fs.StringVar(&opts.natsURL, "nats-url", "", "NATS server URL (overrides config)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Prometheus listen address, e.g. :9090 (overrides config)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Bound on every blocking call, 0 waits forever (overrides config)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.length == 0 {
		opts.length = 48
		if opts.workload == kernel.MatVecName {
			opts.length = 16
		}
	}

	return opts, nil
}

func loadConfig(opts options) (collective.Config, error) {
	cfg := collective.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = collective.LoadConfig(opts.configPath)
		if err != nil {
			return collective.Config{}, fmt.Errorf("%w: %w", collective.ErrInvalidConfig, err)
		}
	}

	switch {
	case opts.runID != "":
		cfg.RunID = opts.runID
	case opts.mode == "local":
		cfg.RunID = uuid.NewString()
	}
	if opts.natsURL != "" {
		cfg.NATS.URL = opts.natsURL
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.timeout != 0 {
		cfg.OperationTimeout = opts.timeout
	}
	if opts.size < 1 {
		return collective.Config{}, fmt.Errorf("%w: size must be at least 1, got %d", collective.ErrInvalidConfig, opts.size)
	}

	collective.SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return collective.Config{}, err
	}

	return cfg, nil
}

// runLocal runs every participant in its own goroutine over one in-process
// store and prints the reports in rank order.
func runLocal(ctx context.Context, cfg collective.Config, opts options, m collective.MetricsCollector, logger *logging.SlogLogger, stdout io.Writer) error {
	store := transport.NewMemoryStore()
	defer store.Purge(cfg.RunID + ".")
	outputs := make([]bytes.Buffer, opts.size)

	eg, ctx := errgroup.WithContext(ctx)
	for rank := range opts.size {
		eg.Go(func() error {
			rankLogger := logger.With("rank", rank)

			g, err := transport.Join(ctx, store, transport.GroupConfig{
				RunID:   cfg.RunID,
				Rank:    rank,
				Size:    opts.size,
				Logger:  rankLogger,
				Metrics: m,
			})
			if err != nil {
				return fmt.Errorf("rank %d failed to join: %w", rank, err)
			}

			host := opts.host
			if host == "" {
				host = fmt.Sprintf("local-%d", rank)
			}

			return participate(ctx, cfg, opts.workload, opts.length, g, &outputs[rank],
				collective.WithHost(host),
				collective.WithLogger(rankLogger),
				collective.WithMetrics(m),
			)
		})
	}
	runErr := eg.Wait()

	for i := range outputs {
		if _, err := outputs[i].WriteTo(stdout); err != nil {
			return err
		}
	}

	return runErr
}

// runNATS runs this process as one participant over NATS JetStream KV.
func runNATS(ctx context.Context, cfg collective.Config, opts options, m collective.MetricsCollector, logger *logging.SlogLogger, stdout io.Writer) error {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("collective-"+cfg.RunID))
	if err != nil {
		return fmt.Errorf("%w: failed to connect to NATS: %w", collective.ErrTransport, err)
	}
	defer nc.Close()

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	store, err := transport.OpenKVStore(startCtx, nc, transport.KVConfig{
		Bucket:   cfg.NATS.Bucket,
		TTL:      cfg.NATS.BucketTTL,
		Attempts: cfg.NATS.BucketRetries,
	})
	if err != nil {
		return err
	}

	g, err := transport.Join(startCtx, store, transport.GroupConfig{
		RunID:   cfg.RunID,
		Rank:    opts.rank,
		Size:    opts.size,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}

	sessOpts := []collective.Option{
		collective.WithLogger(logger.With("rank", g.Rank())),
		collective.WithMetrics(m),
	}
	if opts.host != "" {
		sessOpts = append(sessOpts, collective.WithHost(opts.host))
	}

	return participate(ctx, cfg, opts.workload, opts.length, g, stdout, sessOpts...)
}

// participate runs one participant's round of the named workload and prints its report.
func participate(ctx context.Context, cfg collective.Config, workload string, length int, tr collective.Transport, out io.Writer, opts ...collective.Option) error {
	sess, err := collective.NewSession(&cfg, tr, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close(context.WithoutCancel(ctx)) }()

	switch workload {
	case kernel.VectorSumName:
		return execute(ctx, sess, kernel.VectorSumWorkload(length), out)
	case kernel.MatVecName:
		return execute(ctx, sess, kernel.MatVecWorkload(length), out)
	default:
		return fmt.Errorf("%w: unknown workload %q", collective.ErrInvalidConfig, workload)
	}
}

func execute[E, S, R any](ctx context.Context, sess *collective.Session, w collective.Workload[E, S, R], out io.Writer) error {
	report, err := collective.Execute(ctx, sess, w)
	if err != nil {
		return err
	}

	if report.IsCoordinator() && w.Shared {
		if err := collective.WriteInputs(out, report); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	return collective.WriteReport(out, report)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.SlogLogger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "addr", addr, "error", err)
		}
	}()
	logger.Info("metrics server started", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// exitCode maps a run error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, collective.ErrConfiguration), errors.Is(err, collective.ErrInvalidConfig):
		return exitConfig
	default:
		return exitFailed
	}
}
