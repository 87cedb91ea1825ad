package domain

// ServerType identifies the declared kind of a managed server.
type ServerType struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ServerHandle is the immutable identity of a managed server. It is created
// when the control service reports a new server and destroyed when the
// control service reports its removal.
type ServerHandle struct {
	ID   string     `json:"id"`
	Type ServerType `json:"type"`
}

// ServerState is the full state of one server at a point in time. Incoming
// state events replace the stored ServerState wholesale, including the
// deployable list; there is no merging.
type ServerState struct {
	Handle      ServerHandle      `json:"handle"`
	RunState    RunState          `json:"runState"`
	Deployables []DeployableState `json:"deployables,omitempty"`
}

// DeployableState is the state of one deployment unit hosted by a server.
// It has no identity outside its owning ServerState snapshot.
type DeployableState struct {
	Name         string       `json:"name"`
	PublishState PublishState `json:"publishState"`
}

// ServerEntry pairs a registered handle with its latest reported state.
// State is nil when the control service has never reported one.
type ServerEntry struct {
	Handle ServerHandle `json:"handle"`
	State  *ServerState `json:"state,omitempty"`
}

// ServerBean is a candidate server definition discovered at a filesystem
// location, prior to being named and instantiated.
type ServerBean struct {
	Category string `json:"category"`
	Location string `json:"location"`
	TypeID   string `json:"typeId,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Status is the control service's answer to a creation request. Severity
// zero is informational; anything higher is a failure carrying Message.
type Status struct {
	Severity int    `json:"severity"`
	Message  string `json:"message,omitempty"`
}

// OK reports whether the status is informational.
func (s Status) OK() bool {
	return s.Severity <= StatusSeverityOK
}

// CloneState returns a deep copy of the state so registry snapshots never
// alias caller-held memory.
func CloneState(state ServerState) ServerState {
	deployables := make([]DeployableState, len(state.Deployables))
	copy(deployables, state.Deployables)
	state.Deployables = deployables
	return state
}

// CloneEntry deep-copies a server entry, including its state snapshot.
func CloneEntry(entry ServerEntry) ServerEntry {
	if entry.State == nil {
		return entry
	}
	state := CloneState(*entry.State)
	entry.State = &state
	return entry
}
