package controlsvc

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"serverview/internal/domain"
)

// Script describes a replayable control-service session: the initially
// known servers, a timed event sequence, and canned discovery/creation
// answers. Used by the demo daemon and by tests; the production control
// service lives out of process behind the same interface.
type Script struct {
	Servers  []scriptHandle          `yaml:"servers"`
	Events   []scriptEvent           `yaml:"events"`
	Discover map[string][]scriptBean `yaml:"discover"`
	Create   scriptCreate            `yaml:"create"`
}

type scriptHandle struct {
	ID   string     `yaml:"id"`
	Type scriptType `yaml:"type"`
}

type scriptType struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"displayName"`
}

type scriptEvent struct {
	DelayMs int `yaml:"delayMs"`

	// Exactly one of the following is set per entry.
	ServerAdded   *scriptHandle `yaml:"serverAdded"`
	ServerRemoved *scriptHandle `yaml:"serverRemoved"`
	StateChanged  *scriptState  `yaml:"stateChanged"`
	Output        *scriptOutput `yaml:"output"`
}

type scriptState struct {
	Server      string             `yaml:"server"`
	Type        scriptType         `yaml:"type"`
	RunState    int                `yaml:"runState"`
	Deployables []scriptDeployable `yaml:"deployables"`
}

type scriptDeployable struct {
	Name         string `yaml:"name"`
	PublishState int    `yaml:"publishState"`
}

type scriptOutput struct {
	Server string `yaml:"server"`
	Text   string `yaml:"text"`
}

type scriptBean struct {
	Category string `yaml:"category"`
	Location string `yaml:"location"`
	TypeID   string `yaml:"typeId"`
	Version  string `yaml:"version"`
}

type scriptCreate struct {
	Severity int    `yaml:"severity"`
	Message  string `yaml:"message"`
}

// ScriptClient implements domain.ControlService by replaying a Script.
// Creation requests synthesize a ServerAdded event into the live stream so
// the registry is populated the same way the real service would.
type ScriptClient struct {
	logger *zap.Logger
	script Script

	mu       sync.Mutex
	injected []chan domain.ControlEvent
}

func LoadScript(path string) (Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read control script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(raw, &script); err != nil {
		return Script{}, fmt.Errorf("parse control script: %w", err)
	}
	return script, nil
}

func NewScriptClient(script Script, logger *zap.Logger) *ScriptClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptClient{
		logger: logger.Named("script_control"),
		script: script,
	}
}

func (c *ScriptClient) ListServers(_ context.Context) ([]domain.ServerHandle, error) {
	handles := make([]domain.ServerHandle, 0, len(c.script.Servers))
	for _, h := range c.script.Servers {
		handles = append(handles, h.toDomain())
	}
	return handles, nil
}

func (c *ScriptClient) Events(ctx context.Context) (<-chan domain.ControlEvent, error) {
	out := make(chan domain.ControlEvent)
	inject := make(chan domain.ControlEvent, 16)

	c.mu.Lock()
	c.injected = append(c.injected, inject)
	c.mu.Unlock()

	go func() {
		defer close(out)
		for _, entry := range c.script.Events {
			if entry.DelayMs > 0 {
				select {
				case <-time.After(time.Duration(entry.DelayMs) * time.Millisecond):
				case <-ctx.Done():
					return
				}
			}
			event, ok := entry.toDomain()
			if !ok {
				c.logger.Warn("script entry with no event payload skipped")
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
		// Script exhausted; keep serving synthesized creation events.
		for {
			select {
			case event := <-inject:
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (c *ScriptClient) DiscoverServerDefinitions(_ context.Context, path string) ([]domain.ServerBean, error) {
	raw := c.script.Discover[path]
	beans := make([]domain.ServerBean, 0, len(raw))
	for _, b := range raw {
		beans = append(beans, domain.ServerBean{
			Category: b.Category,
			Location: b.Location,
			TypeID:   b.TypeID,
			Version:  b.Version,
		})
	}
	return beans, nil
}

func (c *ScriptClient) CreateServer(_ context.Context, bean domain.ServerBean, name string) (domain.Status, error) {
	status := domain.Status{
		Severity: c.script.Create.Severity,
		Message:  c.script.Create.Message,
	}
	if !status.OK() {
		return status, nil
	}

	handle := domain.ServerHandle{
		ID: name,
		Type: domain.ServerType{
			ID:          bean.TypeID,
			DisplayName: bean.Category,
		},
	}
	c.mu.Lock()
	for _, inject := range c.injected {
		select {
		case inject <- domain.ServerAddedEvent{Handle: handle}:
		default:
		}
	}
	c.mu.Unlock()
	c.logger.Info("scripted server created", zap.String("server", name), zap.String("category", bean.Category))
	return status, nil
}

func (h scriptHandle) toDomain() domain.ServerHandle {
	return domain.ServerHandle{
		ID: h.ID,
		Type: domain.ServerType{
			ID:          h.Type.ID,
			DisplayName: h.Type.DisplayName,
		},
	}
}

func (e scriptEvent) toDomain() (domain.ControlEvent, bool) {
	switch {
	case e.ServerAdded != nil:
		return domain.ServerAddedEvent{Handle: e.ServerAdded.toDomain()}, true
	case e.ServerRemoved != nil:
		return domain.ServerRemovedEvent{Handle: e.ServerRemoved.toDomain()}, true
	case e.StateChanged != nil:
		deployables := make([]domain.DeployableState, 0, len(e.StateChanged.Deployables))
		for _, d := range e.StateChanged.Deployables {
			deployables = append(deployables, domain.DeployableState{
				Name:         d.Name,
				PublishState: domain.PublishState(d.PublishState),
			})
		}
		return domain.StateChangedEvent{
			State: domain.ServerState{
				Handle: domain.ServerHandle{
					ID: e.StateChanged.Server,
					Type: domain.ServerType{
						ID:          e.StateChanged.Type.ID,
						DisplayName: e.StateChanged.Type.DisplayName,
					},
				},
				RunState:    domain.RunState(e.StateChanged.RunState),
				Deployables: deployables,
			},
		}, true
	case e.Output != nil:
		return domain.OutputProducedEvent{ServerID: e.Output.Server, Text: e.Output.Text}, true
	default:
		return nil, false
	}
}

var _ domain.ControlService = (*ScriptClient)(nil)
