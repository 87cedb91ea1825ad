package app

import (
	"context"

	"go.uber.org/zap"

	"serverview/internal/domain"
	"serverview/internal/infra/notifications"
	"serverview/internal/infra/output"
	"serverview/internal/infra/registry"
	"serverview/internal/infra/telemetry"
	"serverview/internal/view"
	"serverview/internal/workflow"
)

// Engine is the state projection and reconciliation core. It owns the
// registry, the output channel manager, the invalidation hub, and the tree
// projection, and applies control-service events to them on a single
// dispatch goroutine. Constructed once per session; the host shell queries
// the projection and subscribes to invalidations.
type Engine struct {
	logger  *zap.Logger
	control domain.ControlService
	metrics telemetry.Metrics

	hub        *notifications.InvalidationHub
	registry   *registry.Registry
	output     *output.Manager
	projection *view.Projection
}

// EngineOptions configures engine construction. Control is required;
// everything else has a working default.
type EngineOptions struct {
	Control        domain.ControlService
	Settings       output.Settings
	ChannelFactory output.Factory
	Metrics        telemetry.Metrics
	Logger         *zap.Logger
}

func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	hub := notifications.NewInvalidationHub(dropCounter{metrics})
	reg := registry.New(hub, logger)

	return &Engine{
		logger:     logger.Named("engine"),
		control:    opts.Control,
		metrics:    metrics,
		hub:        hub,
		registry:   reg,
		output:     output.NewManager(opts.ChannelFactory, opts.Settings, outputMetrics{metrics}, logger),
		projection: view.NewProjection(reg),
	}
}

// Projection returns the tree data source exposed to the host shell.
func (e *Engine) Projection() *view.Projection {
	return e.projection
}

// Registry returns the server registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Output returns the output channel manager.
func (e *Engine) Output() *output.Manager {
	return e.output
}

// Subscribe returns the invalidation stream for tree consumers.
func (e *Engine) Subscribe(ctx context.Context) <-chan domain.Invalidation {
	return e.hub.Subscribe(ctx)
}

// RevealOutput surfaces the output channel for serverID on demand.
func (e *Engine) RevealOutput(serverID string) {
	e.output.Reveal(serverID)
}

// NewCreationWorkflow builds a server-creation pipeline bound to this
// engine's registry and control service.
func (e *Engine) NewCreationWorkflow(prompter workflow.Prompter) *workflow.Creation {
	return workflow.NewCreation(e.control, e.registry, prompter, e.logger)
}

// RunCreationWorkflow drives one creation pipeline and records its outcome.
// The eventual registry population happens through the control service's
// ServerAdded event, not here.
func (e *Engine) RunCreationWorkflow(ctx context.Context, prompter workflow.Prompter) (*workflow.Result, error) {
	result, err := e.NewCreationWorkflow(prompter).Run(ctx)
	switch {
	case err != nil:
		e.metrics.ObserveWorkflowResult("failure")
	case result == nil:
		e.metrics.ObserveWorkflowResult("canceled")
	default:
		e.metrics.ObserveWorkflowResult("success")
	}
	return result, err
}

// Run populates the registry from the control service and dispatches its
// push events until ctx is canceled or the event stream closes.
func (e *Engine) Run(ctx context.Context) error {
	handles, err := e.control.ListServers(ctx)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "engine.Run", err)
	}
	for _, handle := range handles {
		e.registry.UpsertHandle(handle)
	}
	e.metrics.SetTrackedServers(len(handles))

	events, err := e.control.Events(ctx)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "engine.Run", err)
	}

	e.logger.Info("engine running", zap.Int("servers", len(handles)))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				e.logger.Info("control event stream closed")
				return nil
			}
			e.HandleEvent(event)
		}
	}
}

// HandleEvent applies one control event to the model. Events for unknown
// identifiers are no-ops; the engine must tolerate out-of-order and
// duplicate delivery.
func (e *Engine) HandleEvent(event domain.ControlEvent) {
	switch ev := event.(type) {
	case domain.ServerAddedEvent:
		e.metrics.ObserveEvent("server_added")
		e.registry.UpsertHandle(ev.Handle)
	case domain.ServerRemovedEvent:
		e.metrics.ObserveEvent("server_removed")
		e.registry.RemoveServer(ev.Handle.ID)
		e.output.Release(ev.Handle.ID)
	case domain.StateChangedEvent:
		e.metrics.ObserveEvent("state_changed")
		if e.registry.ApplyStateUpdate(ev.State) && ev.State.RunState == domain.RunStateStarting {
			e.output.ClearOnRestart(ev.State.Handle.ID)
		}
	case domain.OutputProducedEvent:
		e.metrics.ObserveEvent("output_produced")
		e.output.Append(ev.ServerID, ev.Text)
	default:
		e.logger.Warn("unhandled control event")
	}
	e.metrics.SetTrackedServers(len(e.registry.Snapshot()))
}

type dropCounter struct {
	metrics telemetry.Metrics
}

func (d dropCounter) ObserveInvalidationDropped() {
	d.metrics.ObserveInvalidationDropped()
}

type outputMetrics struct {
	metrics telemetry.Metrics
}

func (o outputMetrics) ObserveOutput(serverID string, bytes int) {
	o.metrics.ObserveOutput(serverID, bytes)
}
