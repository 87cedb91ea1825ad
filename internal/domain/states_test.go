package domain

import "testing"

func TestRunStateLabels(t *testing.T) {
	tests := []struct {
		state RunState
		label string
	}{
		{RunStateUnknown, "Unknown"},
		{RunStateStarting, "Starting"},
		{RunStateStarted, "Started"},
		{RunStateStopping, "Stopping"},
		{RunStateStopped, "Stopped"},
		{RunState(42), "Unknown"},
		{RunState(-1), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.label {
			t.Fatalf("RunState(%d).Label() = %q, want %q", tt.state, got, tt.label)
		}
	}
}

func TestPublishStateLabels(t *testing.T) {
	tests := []struct {
		state PublishState
		label string
	}{
		{PublishStateNone, "None"},
		{PublishStateIncremental, "Incremental"},
		{PublishStateFull, "Full"},
		{PublishStateAdd, "Add"},
		{PublishStateRemove, "Remove"},
		{PublishStateUnknown, "Unknown"},
		{PublishState(0), "Unknown"},
		{PublishState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.label {
			t.Fatalf("PublishState(%d).Label() = %q, want %q", tt.state, got, tt.label)
		}
	}
}

func TestCloneStateDetachesDeployables(t *testing.T) {
	original := ServerState{
		Handle:   ServerHandle{ID: "s1"},
		RunState: RunStateStarted,
		Deployables: []DeployableState{
			{Name: "app.war", PublishState: PublishStateFull},
		},
	}

	clone := CloneState(original)
	clone.Deployables[0].Name = "mutated"

	if original.Deployables[0].Name != "app.war" {
		t.Fatal("clone aliases the original deployable slice")
	}
}
