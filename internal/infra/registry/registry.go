package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"serverview/internal/domain"
)

// Registry is the single source of truth for which servers exist and what
// state they are in. It tracks handles and state snapshots separately: a
// handle registers identity, a state update replaces the stored snapshot
// wholesale (last write wins). State updates for identifiers with no
// registered handle are dropped; out-of-order or duplicate events from the
// control service must never be fatal.
type Registry struct {
	logger  *zap.Logger
	emitter domain.InvalidationEmitter

	mu      sync.RWMutex
	handles map[string]domain.ServerHandle
	states  map[string]domain.ServerState
}

func New(emitter domain.InvalidationEmitter, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:  logger.Named("registry"),
		emitter: emitter,
		handles: make(map[string]domain.ServerHandle),
		states:  make(map[string]domain.ServerState),
	}
}

// UpsertHandle registers a server identity. Idempotent by identifier; the
// stored handle is replaced either way. Fires a whole-tree invalidation:
// downstream listeners cannot resolve an identifier they have never seen,
// so no scoped notification is possible.
func (r *Registry) UpsertHandle(handle domain.ServerHandle) {
	r.mu.Lock()
	r.handles[handle.ID] = handle
	r.mu.Unlock()

	r.logger.Debug("handle registered", zap.String("server", handle.ID), zap.String("type", handle.Type.ID))
	r.emit(domain.Invalidation{Kind: domain.InvalidateAll})
}

// ApplyStateUpdate replaces the stored state for the event's server,
// including its deployable list. Returns false and fires nothing when the
// identifier has no registered handle.
func (r *Registry) ApplyStateUpdate(state domain.ServerState) bool {
	id := state.Handle.ID

	r.mu.Lock()
	if _, ok := r.handles[id]; !ok {
		r.mu.Unlock()
		r.logger.Debug("state update for unregistered server dropped", zap.String("server", id))
		return false
	}
	r.states[id] = domain.CloneState(state)
	r.mu.Unlock()

	r.emit(domain.Invalidation{Kind: domain.InvalidateEntity, ServerID: id})
	return true
}

// RemoveServer deletes the handle and state for id. No-op when absent.
func (r *Registry) RemoveServer(id string) bool {
	r.mu.Lock()
	_, hadHandle := r.handles[id]
	delete(r.handles, id)
	delete(r.states, id)
	r.mu.Unlock()

	if !hadHandle {
		return false
	}
	r.logger.Debug("server removed", zap.String("server", id))
	r.emit(domain.Invalidation{Kind: domain.InvalidateEntity, ServerID: id})
	return true
}

// Has reports whether id has a registered handle.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[id]
	return ok
}

// State returns the latest reported state for id, if any.
func (r *Registry) State(id string) (domain.ServerState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[id]
	if !ok {
		return domain.ServerState{}, false
	}
	return domain.CloneState(state), true
}

// Snapshot returns a deep copy of every registered server with its latest
// state, ordered by identifier. A concurrent update arriving mid-render
// cannot tear the returned slice.
func (r *Registry) Snapshot() []domain.ServerEntry {
	r.mu.RLock()
	entries := make([]domain.ServerEntry, 0, len(r.handles))
	for id, handle := range r.handles {
		entry := domain.ServerEntry{Handle: handle}
		if state, ok := r.states[id]; ok {
			clone := domain.CloneState(state)
			entry.State = &clone
		}
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Handle.ID < entries[j].Handle.ID
	})
	return entries
}

func (r *Registry) emit(event domain.Invalidation) {
	if r.emitter == nil {
		return
	}
	r.emitter.EmitInvalidation(event)
}
