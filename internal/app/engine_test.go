package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serverview/internal/domain"
	"serverview/internal/infra/output"
	"serverview/internal/view"
)

type fakeControl struct {
	handles []domain.ServerHandle
	events  chan domain.ControlEvent
}

func newFakeControl(handles ...domain.ServerHandle) *fakeControl {
	return &fakeControl{
		handles: handles,
		events:  make(chan domain.ControlEvent, 16),
	}
}

func (c *fakeControl) ListServers(_ context.Context) ([]domain.ServerHandle, error) {
	return c.handles, nil
}

func (c *fakeControl) Events(_ context.Context) (<-chan domain.ControlEvent, error) {
	return c.events, nil
}

func (c *fakeControl) DiscoverServerDefinitions(_ context.Context, _ string) ([]domain.ServerBean, error) {
	return nil, nil
}

func (c *fakeControl) CreateServer(_ context.Context, _ domain.ServerBean, _ string) (domain.Status, error) {
	return domain.Status{}, nil
}

type alwaysReveal struct{}

func (alwaysReveal) AutoRevealOutput() bool { return true }

func tomcat(id string) domain.ServerHandle {
	return domain.ServerHandle{
		ID:   id,
		Type: domain.ServerType{ID: "tomcat9", DisplayName: "Tomcat"},
	}
}

func newTestEngine(control domain.ControlService) *Engine {
	return NewEngine(EngineOptions{
		Control:  control,
		Settings: alwaysReveal{},
	})
}

func TestRunPopulatesRegistryFromListServers(t *testing.T) {
	control := newFakeControl(tomcat("s1"), tomcat("s2"))
	engine := newTestEngine(control)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(engine.Registry().Snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on context cancellation")
	}
}

func TestRunStopsWhenEventStreamCloses(t *testing.T) {
	control := newFakeControl()
	engine := newTestEngine(control)

	done := make(chan error, 1)
	go func() { done <- engine.Run(context.Background()) }()

	close(control.events)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop when the event stream closed")
	}
}

func TestHandleEventLifecycle(t *testing.T) {
	control := newFakeControl()
	engine := newTestEngine(control)

	engine.HandleEvent(domain.ServerAddedEvent{Handle: tomcat("s1")})
	engine.HandleEvent(domain.StateChangedEvent{State: domain.ServerState{
		Handle:   tomcat("s1"),
		RunState: domain.RunStateStarted,
		Deployables: []domain.DeployableState{
			{Name: "app.war", PublishState: domain.PublishStateFull},
		},
	}})
	engine.HandleEvent(domain.OutputProducedEvent{ServerID: "s1", Text: "listening on 8080\n"})

	state, ok := engine.Registry().State("s1")
	require.True(t, ok)
	require.Equal(t, domain.RunStateStarted, state.RunState)

	roots := engine.Projection().Roots()
	require.Len(t, roots, 1)
	require.Equal(t, "s1:Tomcat(Started)", engine.Projection().Label(roots[0]))
	require.Len(t, engine.Projection().Children(roots[0]), 1)

	ch, ok := engine.Output().Channel("s1")
	require.True(t, ok)
	require.Equal(t, "listening on 8080\n", ch.(*output.Buffer).Contents())

	// Removal tears down both the registry entry and the output channel.
	engine.HandleEvent(domain.ServerRemovedEvent{Handle: tomcat("s1")})
	require.Empty(t, engine.Registry().Snapshot())
	_, ok = engine.Output().Channel("s1")
	require.False(t, ok)
}

func TestTransitionIntoStartingClearsOutput(t *testing.T) {
	engine := newTestEngine(newFakeControl())

	engine.HandleEvent(domain.ServerAddedEvent{Handle: tomcat("s1")})
	engine.HandleEvent(domain.OutputProducedEvent{ServerID: "s1", Text: "previous run"})
	engine.HandleEvent(domain.StateChangedEvent{State: domain.ServerState{
		Handle:   tomcat("s1"),
		RunState: domain.RunStateStarting,
	}})

	ch, ok := engine.Output().Channel("s1")
	require.True(t, ok)
	require.Empty(t, ch.(*output.Buffer).Contents())
}

func TestStateUpdateForUnknownServerIsIgnored(t *testing.T) {
	engine := newTestEngine(newFakeControl())

	engine.HandleEvent(domain.StateChangedEvent{State: domain.ServerState{
		Handle:   tomcat("ghost"),
		RunState: domain.RunStateStarting,
	}})

	require.Empty(t, engine.Registry().Snapshot())
	// The Starting transition of a dropped update must not touch output.
	_, ok := engine.Output().Channel("ghost")
	require.False(t, ok)
}

func TestMutationsFireScopedInvalidations(t *testing.T) {
	engine := newTestEngine(newFakeControl())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := engine.Subscribe(ctx)

	engine.HandleEvent(domain.ServerAddedEvent{Handle: tomcat("s1")})
	first := receiveInvalidation(t, events)
	require.Equal(t, domain.InvalidateAll, first.Kind)

	engine.HandleEvent(domain.StateChangedEvent{State: domain.ServerState{
		Handle:   tomcat("s1"),
		RunState: domain.RunStateStarted,
	}})
	second := receiveInvalidation(t, events)
	require.Equal(t, domain.InvalidateEntity, second.Kind)
	require.Equal(t, "s1", second.ServerID)
}

func TestRevealOutputOnDemand(t *testing.T) {
	control := newFakeControl()
	engine := NewEngine(EngineOptions{
		Control:  control,
		Settings: nil, // no auto-reveal
	})

	engine.HandleEvent(domain.ServerAddedEvent{Handle: tomcat("s1")})
	engine.HandleEvent(domain.OutputProducedEvent{ServerID: "s1", Text: "quiet"})

	ch, ok := engine.Output().Channel("s1")
	require.True(t, ok)
	require.False(t, ch.(*output.Buffer).Revealed())

	engine.RevealOutput("s1")
	require.True(t, ch.(*output.Buffer).Revealed())
}

func TestProjectionTracksLatestState(t *testing.T) {
	engine := newTestEngine(newFakeControl())
	engine.HandleEvent(domain.ServerAddedEvent{Handle: tomcat("s1")})

	var node view.Node = engine.Projection().Roots()[0]
	require.Equal(t, "s1:Tomcat(Unknown)", engine.Projection().Label(node))

	engine.HandleEvent(domain.StateChangedEvent{State: domain.ServerState{
		Handle:   tomcat("s1"),
		RunState: domain.RunStateStopping,
	}})
	node = engine.Projection().Roots()[0]
	require.Equal(t, "s1:Tomcat(Stopping)", engine.Projection().Label(node))
	require.Equal(t, "Stopping", engine.Projection().ContextTag(node))
}

type cancelingPrompter struct{}

func (cancelingPrompter) SelectDirectory(_ context.Context) (string, bool, error) {
	return "", false, nil
}

func (cancelingPrompter) InputName(_ context.Context, _ func(string) error) (string, bool, error) {
	return "", false, nil
}

func TestRunCreationWorkflowCancellation(t *testing.T) {
	engine := newTestEngine(newFakeControl())

	result, err := engine.RunCreationWorkflow(context.Background(), cancelingPrompter{})
	require.NoError(t, err)
	require.Nil(t, result)
	require.Empty(t, engine.Registry().Snapshot())
}

func receiveInvalidation(t *testing.T, ch <-chan domain.Invalidation) domain.Invalidation {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for invalidation")
		return domain.Invalidation{}
	}
}
