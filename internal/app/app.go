package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"serverview/internal/infra/controlsvc"
	"serverview/internal/infra/telemetry"
)

// App wires the projection engine into a runnable daemon: configuration
// with hot reload, prometheus telemetry, and a scripted control service.
type App struct {
	logger *zap.Logger
}

// ServeConfig carries the serve invocation parameters.
type ServeConfig struct {
	ConfigPath string
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger.Named("app")}
}

// Serve runs the engine until ctx is canceled.
func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	store, err := NewConfigStore(cfg.ConfigPath, a.logger)
	if err != nil {
		return err
	}
	current := store.Current()
	if current.Control.Script == "" {
		return errors.New("control.script is required: path to a control-service event script")
	}

	script, err := controlsvc.LoadScript(current.Control.Script)
	if err != nil {
		return err
	}
	control := controlsvc.NewScriptClient(script, a.logger)

	promRegistry := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(promRegistry)

	engine := NewEngine(EngineOptions{
		Control:  control,
		Settings: store,
		Metrics:  metrics,
		Logger:   a.logger,
	})

	go store.Watch(ctx)
	go func() {
		err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
			Addr:     current.Observability.ListenAddress,
			Registry: promRegistry,
		}, a.logger)
		if err != nil {
			a.logger.Error("observability server exited", zap.Error(err))
		}
	}()

	err = engine.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// ValidateConfig loads the configuration and, when a control script is
// configured, parses it, without running the engine.
func (a *App) ValidateConfig(_ context.Context, cfg ServeConfig) error {
	store, err := NewConfigStore(cfg.ConfigPath, a.logger)
	if err != nil {
		return err
	}
	current := store.Current()
	if current.Control.Script != "" {
		if _, err := controlsvc.LoadScript(current.Control.Script); err != nil {
			return err
		}
	}
	fmt.Printf("config ok: autoReveal=%t listen=%s\n",
		current.Output.AutoReveal, current.Observability.ListenAddress)
	return nil
}
