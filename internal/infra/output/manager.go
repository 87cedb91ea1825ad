package output

import (
	"sync"

	"go.uber.org/zap"
)

// Settings exposes the one configuration bit the manager consults: whether
// a channel is surfaced automatically when new output arrives.
type Settings interface {
	AutoRevealOutput() bool
}

// Metrics is notified about appended output volume.
type Metrics interface {
	ObserveOutput(serverID string, bytes int)
}

// Manager owns the per-server output channels: lazily created on first
// output, cleared when the server transitions into Starting, cleared and
// released on removal. Nothing else is permitted to dispose a channel.
type Manager struct {
	logger   *zap.Logger
	factory  Factory
	settings Settings
	metrics  Metrics

	mu       sync.Mutex
	channels map[string]Channel
}

func NewManager(factory Factory, settings Settings, metrics Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = func(string) Channel { return NewBuffer() }
	}
	return &Manager{
		logger:   logger.Named("output"),
		factory:  factory,
		settings: settings,
		metrics:  metrics,
		channels: make(map[string]Channel),
	}
}

// Append lazily creates the channel for serverID and appends text. When
// auto-reveal is configured the channel is surfaced afterwards.
func (m *Manager) Append(serverID, text string) {
	ch := m.ensure(serverID)
	ch.Append(text)
	if m.metrics != nil {
		m.metrics.ObserveOutput(serverID, len(text))
	}
	if m.settings != nil && m.settings.AutoRevealOutput() {
		ch.Reveal()
	}
}

// ClearOnRestart clears buffered text without destroying the channel.
// No-op when no channel exists yet.
func (m *Manager) ClearOnRestart(serverID string) {
	m.mu.Lock()
	ch, ok := m.channels[serverID]
	m.mu.Unlock()
	if !ok {
		return
	}
	ch.Clear()
	m.logger.Debug("output cleared on restart", zap.String("server", serverID))
}

// Release clears and permanently detaches the channel for serverID. Safe
// to call when no channel exists. A later Append for the same identifier
// starts over with a fresh channel.
func (m *Manager) Release(serverID string) {
	m.mu.Lock()
	ch, ok := m.channels[serverID]
	delete(m.channels, serverID)
	m.mu.Unlock()
	if !ok {
		return
	}
	ch.Clear()
	ch.Dispose()
	m.logger.Debug("output channel released", zap.String("server", serverID))
}

// Reveal brings the channel into view on demand; no-op if none exists yet.
func (m *Manager) Reveal(serverID string) {
	m.mu.Lock()
	ch, ok := m.channels[serverID]
	m.mu.Unlock()
	if !ok {
		return
	}
	ch.Reveal()
}

// Channel returns the live channel for serverID, if one exists.
func (m *Manager) Channel(serverID string) (Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.channels[serverID]
	return ch, ok
}

func (m *Manager) ensure(serverID string) Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[serverID]; ok {
		return ch
	}
	ch := m.factory(serverID)
	m.channels[serverID] = ch
	return ch
}
