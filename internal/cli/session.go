package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"redactbench/internal/config"
	"redactbench/internal/duckdb"
	"redactbench/internal/logger"
	"redactbench/internal/metrics"
	"redactbench/internal/oracle"
	"redactbench/internal/record"
	"redactbench/internal/runner"
	"redactbench/internal/storage/jsonl"
)

// session is one command invocation: config, logger, backend and the loaded store.
type session struct {
	cfg        config.Config
	configPath string
	repoRoot   string
	store      *record.Store
	backend    record.Persistence
	closer     func() error
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// stdin allows tests to override standard input.
var stdin io.Reader = os.Stdin

// openBackend is a test seam for choosing persistence.
var openBackend = func(ctx context.Context, cfg config.Config, repoRoot string) (record.Persistence, func() error, error) {
	path := cfg.StoragePath(repoRoot)
	switch cfg.Storage.Backend {
	case config.BackendDuckDB:
		store, err := duckdb.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return jsonl.New(path), func() error { return nil }, nil
	}
}

// interruptContext is a test seam for SIGINT handling in long-running commands.
var interruptContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// oracleSet bundles the model roles used by the runner.
type oracleSet struct {
	answerer  oracle.Answerer
	judge     oracle.Judge
	generator oracle.Generator
}

// newOracles is a test seam for the model client.
var newOracles = func(cfg config.Config, log *logger.Logger, m *metrics.Metrics) (oracleSet, error) {
	client, err := oracle.NewClient(oracle.Config{
		Provider:        cfg.Model.Provider,
		Model:           cfg.Model.Name,
		APIKey:          os.Getenv(config.EnvAPIKey),
		BaseURL:         cfg.Model.BaseURL,
		MaxOutputTokens: cfg.Model.MaxOutputTokens,
		Logger:          log,
		Metrics:         m,
	})
	if err != nil {
		return oracleSet{}, err
	}
	return oracleSet{answerer: client, judge: client, generator: client}, nil
}

func openSession(ctx context.Context, cfgPath string) (*session, error) {
	configPath, err := resolveConfigPath(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config:\n%w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}
	repoRoot := config.RepoRootFromConfigPath(configPath)
	backend, closer, err := openBackend(ctx, cfg, repoRoot)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	store, err := record.Open(ctx, backend)
	if err != nil {
		_ = closer()
		log.Sync()
		return nil, err
	}
	log.Debug("store loaded", "backend", cfg.Storage.Backend, "items", store.Len())
	return &session{
		cfg:        cfg,
		configPath: configPath,
		repoRoot:   repoRoot,
		store:      store,
		backend:    backend,
		closer:     closer,
		log:        log,
		metrics:    metrics.New(),
	}, nil
}

func (s *session) save(ctx context.Context) error {
	if err := s.store.SaveTo(ctx, s.backend); err != nil {
		return err
	}
	s.log.Debug("store saved", "items", s.store.Len(), "version", s.store.Version())
	return nil
}

func (s *session) Close() {
	if s.closer != nil {
		if err := s.closer(); err != nil {
			s.log.Warn("close storage", "error", err)
		}
	}
	s.log.Sync()
}

// runner builds a runner over the session store. The model client is only
// constructed when a command needs it.
func (s *session) runner(observer runner.Observer) (*runner.Runner, error) {
	oracles, err := newOracles(s.cfg, s.log, s.metrics)
	if err != nil {
		return nil, err
	}
	return runner.New(runner.Deps{
		Store:       s.store,
		Answerer:    oracles.answerer,
		Judge:       oracles.judge,
		Generator:   oracles.generator,
		Workers:     s.cfg.Runner.Workers,
		Threshold:   s.cfg.Scoring.Threshold,
		CallTimeout: s.cfg.Timeout(),
		Logger:      s.log,
		Metrics:     s.metrics,
		Observer:    observer,
	}), nil
}

// withSession opens a session, runs fn and closes it, reporting failures on stderr.
func withSession(cfgPath string, stderr io.Writer, fn func(ctx context.Context, s *session) int) int {
	ctx := context.Background()
	s, err := openSession(ctx, cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return ExitError
	}
	defer s.Close()
	return fn(ctx, s)
}

// saveOrFail persists the store and maps the result to an exit code. An
// interrupted command still saves whatever it recorded before the interrupt.
func saveOrFail(ctx context.Context, s *session, stderr io.Writer) int {
	if err := s.save(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(stderr, "Save failed: %v\n", err)
		return ExitError
	}
	return ExitOK
}
