package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiyoungwoo/Resume-assistant/internal/config"
	"github.com/shiyoungwoo/Resume-assistant/internal/gateway"
	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/llm"
	"github.com/shiyoungwoo/Resume-assistant/internal/logging"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/station"
	"github.com/shiyoungwoo/Resume-assistant/internal/store"
)

// app holds what a command needs. The station and gateway are only set up
// for commands that call the AI service.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	gateway *gateway.Gateway
	station *station.Station
	devices *media.Devices
}

// newLLMClient is replaced in tests.
var newLLMClient = func(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
}

func openApp(ctx context.Context, withAI bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Env, verbose || cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store, cfg.StoreDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}

	a := &app{cfg: cfg, logger: logger, store: st}
	if !withAI {
		return a, nil
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.gateway = gateway.New(client, logger.Named("gateway"))
	a.devices = media.NewDevices(media.Deny)

	a.station, err = station.New(ctx, a.gateway, st, a.devices, station.Options{
		AutoGenerate:  !cfg.NoAutoGenerate,
		InitialPoints: cfg.InitialPoints,
	}, logger)
	if err != nil {
		_ = a.gateway.Close()
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// points returns the ledger and quota over the app store, seeding the
// balance on first use.
func (a *app) points(ctx context.Context) (*ledger.Ledger, *ledger.Quota, error) {
	l := ledger.New(a.store)
	if err := l.Seed(ctx, a.cfg.InitialPoints); err != nil {
		return nil, nil, fmt.Errorf("failed to seed points: %w", err)
	}
	return l, ledger.NewQuota(a.store), nil
}

// close tears the station down and closes the store.
func (a *app) close(ctx context.Context) {
	if a.station != nil {
		if err := a.station.Close(ctx); err != nil {
			a.logger.Warn("station teardown failed", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
