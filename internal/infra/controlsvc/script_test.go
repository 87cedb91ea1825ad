package controlsvc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"serverview/internal/domain"
)

const sampleScript = `
servers:
  - id: s1
    type: {id: tomcat9, displayName: Tomcat}
events:
  - stateChanged:
      server: s1
      type: {id: tomcat9, displayName: Tomcat}
      runState: 1
  - output:
      server: s1
      text: "booting\n"
  - serverAdded:
      id: s2
      type: {id: jboss7, displayName: JBoss}
  - serverRemoved:
      id: s1
      type: {id: tomcat9, displayName: Tomcat}
discover:
  /srv/tomcat:
    - {category: TOMCAT, location: /srv/tomcat, typeId: tomcat9, version: "9.0"}
create:
  severity: 0
  message: ok
`

func loadSample(t *testing.T) Script {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0o644))
	script, err := LoadScript(path)
	require.NoError(t, err)
	return script
}

func collect(t *testing.T, ch <-chan domain.ControlEvent, n int) []domain.ControlEvent {
	t.Helper()
	events := make([]domain.ControlEvent, 0, n)
	for len(events) < n {
		select {
		case event := <-ch:
			events = append(events, event)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d events", len(events), n)
		}
	}
	return events
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestListServers(t *testing.T) {
	client := NewScriptClient(loadSample(t), nil)
	handles, err := client.ListServers(context.Background())
	require.NoError(t, err)
	require.Len(t, handles, 1)
	require.Equal(t, "s1", handles[0].ID)
	require.Equal(t, "Tomcat", handles[0].Type.DisplayName)
}

func TestEventsReplayInScriptOrder(t *testing.T) {
	client := NewScriptClient(loadSample(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.Events(ctx)
	require.NoError(t, err)
	events := collect(t, ch, 4)

	state, ok := events[0].(domain.StateChangedEvent)
	require.True(t, ok, "first event should be a state change, got %T", events[0])
	require.Equal(t, domain.RunStateStarting, state.State.RunState)

	out, ok := events[1].(domain.OutputProducedEvent)
	require.True(t, ok, "second event should be output, got %T", events[1])
	require.Equal(t, "booting\n", out.Text)

	added, ok := events[2].(domain.ServerAddedEvent)
	require.True(t, ok, "third event should be an add, got %T", events[2])
	require.Equal(t, "s2", added.Handle.ID)

	removed, ok := events[3].(domain.ServerRemovedEvent)
	require.True(t, ok, "fourth event should be a removal, got %T", events[3])
	require.Equal(t, "s1", removed.Handle.ID)
}

func TestDiscoverServerDefinitions(t *testing.T) {
	client := NewScriptClient(loadSample(t), nil)

	beans, err := client.DiscoverServerDefinitions(context.Background(), "/srv/tomcat")
	require.NoError(t, err)
	require.Len(t, beans, 1)
	require.Equal(t, "TOMCAT", beans[0].Category)

	beans, err = client.DiscoverServerDefinitions(context.Background(), "/nowhere")
	require.NoError(t, err)
	require.Empty(t, beans)
}

func TestCreateServerSynthesizesAddEvent(t *testing.T) {
	client := NewScriptClient(loadSample(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.Events(ctx)
	require.NoError(t, err)
	collect(t, ch, 4) // drain the scripted prefix

	status, err := client.CreateServer(ctx, domain.ServerBean{Category: "TOMCAT", TypeID: "tomcat9"}, "fresh")
	require.NoError(t, err)
	require.True(t, status.OK())

	events := collect(t, ch, 1)
	added, ok := events[0].(domain.ServerAddedEvent)
	require.True(t, ok, "expected a synthesized add, got %T", events[0])
	require.Equal(t, "fresh", added.Handle.ID)
	require.Equal(t, "tomcat9", added.Handle.Type.ID)
}

func TestCreateServerRejection(t *testing.T) {
	script := loadSample(t)
	script.Create = scriptCreate{Severity: 4, Message: "denied"}
	client := NewScriptClient(script, nil)

	status, err := client.CreateServer(context.Background(), domain.ServerBean{Category: "TOMCAT"}, "s9")
	require.NoError(t, err)
	require.False(t, status.OK())
	require.Equal(t, "denied", status.Message)
}
