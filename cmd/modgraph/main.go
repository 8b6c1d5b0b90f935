package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/modgraph"
	"github.com/hanpama/modgraph/internal/discovery"
	"github.com/hanpama/modgraph/internal/eventbus"
	"github.com/hanpama/modgraph/internal/logging"
	"github.com/hanpama/modgraph/internal/metrics"
	"github.com/hanpama/modgraph/internal/otel"
	"github.com/hanpama/modgraph/internal/server"
)

const rootUsage = `modgraph: modular GraphQL schema tools

USAGE:
  modgraph <command> [flags]

COMMANDS:
  serve            Serve the composed schema over HTTP, resolving from fixtures
  compile-sdl      Compose & validate GraphQL SDL fragments into a single schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -graphql.root <dir>           GraphQL schema root (default: .)
  -fixtures <file>              YAML or JSON document used as the root value
  -server.addr <addr>           HTTP listen address (default: :8080)
  -server.pretty                Pretty-print JSON responses
  -server.timeout <duration>    Per-request timeout, e.g. 10s (default: 10s)
  -server.cors <origin>         Allowed CORS origin. Repeatable
  -log.pretty                   Human readable console logs
  -log.level <level>            debug, info, warn or error (default: info)
  -otel.endpoint <addr>         OTLP collector endpoint
  -otel.service <name>          OpenTelemetry service name (default: modgraph)
`

const compileSDLUsage = `compile-sdl FLAGS:
  -graphql.root <dir>      GraphQL schema root (default: .)
  -out  <file>             Write compiled SDL to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("modgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "compile-sdl":
		return cmdCompileSDL(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "compile-sdl":
		fmt.Print(compileSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type serveConfig struct {
	rootDir      string
	fixtures     string
	addr         string
	pretty       bool
	timeout      time.Duration
	corsOrigins  []string
	logPretty    bool
	logLevel     string
	otelEndpoint string
	otelService  string
}

func cmdServe(args []string) error {
	cfg := serveConfig{
		rootDir:     ".",
		addr:        ":8080",
		timeout:     10 * time.Second,
		logLevel:    "info",
		otelService: "modgraph",
	}
	var cors stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.rootDir, "graphql.root", cfg.rootDir, "GraphQL schema root")
	fs.StringVar(&cfg.fixtures, "fixtures", cfg.fixtures, "Root value document")
	fs.StringVar(&cfg.addr, "server.addr", cfg.addr, "HTTP listen address")
	fs.BoolVar(&cfg.pretty, "server.pretty", cfg.pretty, "Pretty-print JSON responses")
	fs.DurationVar(&cfg.timeout, "server.timeout", cfg.timeout, "Per-request timeout")
	fs.Var(&cors, "server.cors", "Allowed CORS origin")
	fs.BoolVar(&cfg.logPretty, "log.pretty", cfg.logPretty, "Human readable console logs")
	fs.StringVar(&cfg.logLevel, "log.level", cfg.logLevel, "Log level")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	cfg.corsOrigins = cors

	level, err := logging.ParseLevel(cfg.logLevel)
	if err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	logger := logging.New(cfg.logPretty, false, level)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	handler, detach, err := newServeHandler(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer detach()

	srv := &http.Server{Addr: cfg.addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening", zap.String("addr", cfg.addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServeHandler composes the schema under cfg.rootDir and returns the
// GraphQL and metrics endpoints. detach removes the bus subscribers it added.
func newServeHandler(ctx context.Context, cfg serveConfig, logger *zap.Logger, reg *prometheus.Registry) (http.Handler, func(), error) {
	exec, err := loadExecutor(ctx, cfg.rootDir)
	if err != nil {
		return nil, nil, err
	}
	root, err := loadFixtures(cfg.fixtures)
	if err != nil {
		return nil, nil, err
	}

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	detachMetrics := metrics.New(reg).Attach()
	detachLogs := logging.Attach(logger)

	sopts := []server.Option{server.WithRootValue(root)}
	if cfg.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.timeout > 0 {
		sopts = append(sopts, server.WithTimeout(cfg.timeout))
	}
	if len(cfg.corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.corsOrigins...))
	}
	h, err := server.New(exec, sopts...)
	if err != nil {
		detachMetrics()
		detachLogs()
		return nil, nil, fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux, func() {
		detachMetrics()
		detachLogs()
	}, nil
}

func loadExecutor(ctx context.Context, rootDir string) (*modgraph.Executor, error) {
	modules, err := discovery.Load(ctx, rootDir)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no GraphQL files found under %q", rootDir)
	}
	exec, err := modgraph.NewExecutor(modules...)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return exec, nil
}

// loadFixtures reads the root value document. JSON is valid YAML.
func loadFixtures(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	root := map[string]any{}
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parse fixtures %q: %w", path, err)
	}
	return root, nil
}

func cmdCompileSDL(args []string) error {
	rootDir := "."
	outFile := ""
	fs := flag.NewFlagSet("compile-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&rootDir, "graphql.root", rootDir, "GraphQL schema root")
	fs.StringVar(&outFile, "out", outFile, "Write compiled SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, compileSDLUsage)
		return err
	}

	exec, err := loadExecutor(context.Background(), rootDir)
	if err != nil {
		return err
	}
	sdl := exec.SDL()
	if outFile == "" {
		fmt.Print(sdl)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(sdl), 0644); err != nil {
		return err
	}
	return nil
}
