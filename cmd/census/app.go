package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/census/internal/api"
	"github.com/mark3labs/census/internal/auth"
	"github.com/mark3labs/census/internal/config"
	"github.com/mark3labs/census/internal/hooks"
	"github.com/mark3labs/census/internal/logger"
	"github.com/mark3labs/census/internal/nats"
	"github.com/mark3labs/census/internal/records"
	"github.com/mark3labs/census/internal/session"
	"github.com/mark3labs/census/internal/store"
	"github.com/mark3labs/census/internal/validate"
	"github.com/mark3labs/census/internal/wizard"
)

// app holds everything a command needs: configuration, the journal, the
// token manager, the service client and the controllers built on it.
type app struct {
	cfg     *config.Config
	bus     *nats.Bus
	journal *session.Store
	auth    *auth.Manager
	client  *api.Client
	wizard  *wizard.Controller
	records *records.Controller
}

// openApp loads configuration, starts the embedded journal and wires the
// controllers. Close must be called when done.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// Flags win over every other source
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}

	// x/editor reads $EDITOR
	if cfg.Editor != "" {
		_ = os.Setenv("EDITOR", cfg.Editor)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	bus, err := nats.Open(ctx, filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return nil, err
	}

	mgr, err := auth.NewManager(ctx, session.NewTokenStore(bus.KV))
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	client := api.New(cfg.APIURL,
		api.WithTimeout(timeout),
		api.WithReadAttempts(uint(cfg.ReadRetries)),
		api.WithTokenSource(mgr),
		api.WithUnauthorizedHandler(mgr.HandleUnauthorized),
	)

	journal := session.NewStore(bus.JS, bus.Stream)

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}
	hookCfg, err := hooks.LoadConfig(workDir)
	if err != nil {
		logger.Warn("Ignoring hooks: %v", err)
		hookCfg = nil
	}
	runner := hooks.NewRunner(hookCfg, workDir)
	runner.Output = func(ev wizard.Event, output string) {
		logger.Info("Hooks for %s on %s:\n%s", ev.Kind, ev.RecordID, output)
	}

	v, err := validate.New()
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("failed to build validator: %w", err)
	}
	wiz := wizard.New(client, v,
		wizard.WithRecorder(wizard.Recorders(journal, runner)),
		wizard.WithStoreOptions(store.WithMaxMembers(cfg.MaxMembers)),
	)

	return &app{
		cfg:     cfg,
		bus:     bus,
		journal: journal,
		auth:    mgr,
		client:  client,
		wizard:  wiz,
		records: records.New(client),
	}, nil
}

// Close stops the embedded journal.
func (a *app) Close() {
	if err := a.bus.Close(); err != nil {
		logger.Warn("Error closing journal: %v", err)
	}
}

// requireLogin fails early when no token is stored.
func (a *app) requireLogin() (*auth.Claims, error) {
	claims, err := a.auth.Claims()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'census login' first", err)
	}
	return claims, nil
}

// track fetches a record from the service and hands it to the wizard.
func (a *app) track(ctx context.Context, id string) error {
	rec, err := a.client.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load record %s: %w", id, err)
	}
	a.records.Upsert(rec)
	return a.wizard.Track(ctx, rec)
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
