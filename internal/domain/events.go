package domain

// ControlEvent is the closed union of push events from the control service.
// Consumers dispatch on the concrete type; there are exactly four variants.
type ControlEvent interface {
	isControlEvent()
}

// ServerAddedEvent reports a new server identity.
type ServerAddedEvent struct {
	Handle ServerHandle
}

// ServerRemovedEvent reports that a server no longer exists.
type ServerRemovedEvent struct {
	Handle ServerHandle
}

// StateChangedEvent carries a full replacement state snapshot for one server.
type StateChangedEvent struct {
	State ServerState
}

// OutputProducedEvent carries a chunk of output text for one server.
type OutputProducedEvent struct {
	ServerID string
	Text     string
}

func (ServerAddedEvent) isControlEvent()    {}
func (ServerRemovedEvent) isControlEvent()  {}
func (StateChangedEvent) isControlEvent()   {}
func (OutputProducedEvent) isControlEvent() {}

// InvalidationKind selects between the two notification shapes consumers
// must handle.
type InvalidationKind string

const (
	// InvalidateAll tells consumers to re-derive the whole tree.
	InvalidateAll InvalidationKind = "all"
	// InvalidateEntity scopes the re-derivation to one server's subtree.
	InvalidateEntity InvalidationKind = "entity"
)

// Invalidation is one change notification. ServerID is set only for
// InvalidateEntity.
type Invalidation struct {
	Kind     InvalidationKind `json:"kind"`
	ServerID string           `json:"serverId,omitempty"`
}

// InvalidationEmitter is implemented by the notification hub; mutating
// registry operations fire exactly one invalidation through it.
type InvalidationEmitter interface {
	EmitInvalidation(event Invalidation)
}
