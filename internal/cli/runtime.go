package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/yolodolo42/edumind/internal/auth"
	"github.com/yolodolo42/edumind/internal/config"
	"github.com/yolodolo42/edumind/internal/history"
	"github.com/yolodolo42/edumind/internal/llm"
	"github.com/yolodolo42/edumind/internal/logging"
	"github.com/yolodolo42/edumind/internal/study"
)

// providerFactory resolves the provider for a command. Tests replace it.
var providerFactory = func(ctx context.Context, s config.Settings) (llm.Provider, error) {
	manager, err := auth.NewManager(s.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return manager.ResolveProvider(ctx, llm.ProviderID(s.Provider), s.Model)
}

// runtime bundles what every tool command needs: settings, the log file and
// the history store.
type runtime struct {
	settings config.Settings
	logger   *slog.Logger
	history  *history.Store
	closers  []io.Closer
}

func openRuntime() (*runtime, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	settings := config.Load(viper.GetViper(), dataDir)

	rt := &runtime{settings: settings}

	logger, logCloser, err := logging.Open(dataDir, logging.ParseLevel(settings.LogLevel))
	if err != nil {
		return nil, err
	}
	rt.logger = logger
	rt.closers = append(rt.closers, logCloser)

	store, err := history.Open(dataDir)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.history = store
	rt.closers = append(rt.closers, store)

	return rt, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
	rt.closers = nil
}

// service builds a study service on the resolved provider that records to
// history.
func (rt *runtime) service(ctx context.Context) (*study.Service, error) {
	provider, err := providerFactory(ctx, rt.settings)
	if err != nil {
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		rt.closers = append(rt.closers, c)
	}

	rt.logger.Info("provider resolved", "provider", provider.ID(), "model", provider.DefaultModel())

	opts := []study.Option{
		study.WithLogger(rt.logger),
		study.WithRecorder(rt.history),
	}
	if sp, ok := provider.(llm.SpeechProvider); ok {
		opts = append(opts, study.WithSpeech(sp, rt.settings.Speech.Voice))
	}
	if key := openRouterKey(rt.settings.DataDir); key != "" {
		opts = append(opts, study.WithOpenRouterKey(key))
	}
	return study.NewService(provider, opts...), nil
}

// openRouterKey returns the stored OpenRouter key, if any. It is only used to
// read the public model catalog.
func openRouterKey(dataDir string) string {
	manager, err := auth.NewManager(dataDir)
	if err != nil {
		return ""
	}
	key, err := manager.GetAPIKey(llm.ProviderOpenRouter)
	if err != nil {
		return ""
	}
	return key
}
