package domain

// RunState is the lifecycle phase of a server process.
type RunState int

const (
	RunStateUnknown  RunState = 0
	RunStateStarting RunState = 1
	RunStateStarted  RunState = 2
	RunStateStopping RunState = 3
	RunStateStopped  RunState = 4
)

var runStateLabels = map[RunState]string{
	RunStateUnknown:  "Unknown",
	RunStateStarting: "Starting",
	RunStateStarted:  "Started",
	RunStateStopping: "Stopping",
	RunStateStopped:  "Stopped",
}

// Label returns the human-readable name for the run state. Codes outside
// the table fold into Unknown so stale control services cannot break the
// projection.
func (s RunState) Label() string {
	if label, ok := runStateLabels[s]; ok {
		return label
	}
	return runStateLabels[RunStateUnknown]
}

// PublishState is the synchronization phase of a deployable's content
// relative to the running server.
type PublishState int

const (
	PublishStateNone        PublishState = 1
	PublishStateIncremental PublishState = 2
	PublishStateFull        PublishState = 3
	PublishStateAdd         PublishState = 4
	PublishStateRemove      PublishState = 5
	PublishStateUnknown     PublishState = 6
)

var publishStateLabels = map[PublishState]string{
	PublishStateNone:        "None",
	PublishStateIncremental: "Incremental",
	PublishStateFull:        "Full",
	PublishStateAdd:         "Add",
	PublishStateRemove:      "Remove",
	PublishStateUnknown:     "Unknown",
}

// Label returns the human-readable name for the publish state, folding
// unrecognized codes into Unknown.
func (s PublishState) Label() string {
	if label, ok := publishStateLabels[s]; ok {
		return label
	}
	return publishStateLabels[PublishStateUnknown]
}
