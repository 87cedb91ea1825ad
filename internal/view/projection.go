package view

import (
	"fmt"

	"serverview/internal/domain"
)

// Node is one entry of the two-level display tree: servers at the root,
// deployables beneath them.
type Node interface {
	isNode()
}

// ServerNode is a root-level node for one registered server.
type ServerNode struct {
	Entry domain.ServerEntry
}

// DeployableNode is a leaf node for one deployment unit.
type DeployableNode struct {
	ServerID   string
	Deployable domain.DeployableState
}

func (ServerNode) isNode()     {}
func (DeployableNode) isNode() {}

// Snapshotter is the registry surface the projection derives from.
type Snapshotter interface {
	Snapshot() []domain.ServerEntry
}

// Projection derives the display tree from registry snapshots. It holds no
// state of its own; every query reads a fresh snapshot so the tree always
// reflects the latest applied event.
type Projection struct {
	source Snapshotter
}

func NewProjection(source Snapshotter) *Projection {
	return &Projection{source: source}
}

// Roots returns the ordered root nodes, one per registered server.
func (p *Projection) Roots() []Node {
	entries := p.source.Snapshot()
	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		nodes = append(nodes, ServerNode{Entry: entry})
	}
	return nodes
}

// Children returns a server node's deployables in reported order.
// Deployable nodes are leaves.
func (p *Projection) Children(node Node) []Node {
	server, ok := node.(ServerNode)
	if !ok || server.Entry.State == nil {
		return nil
	}
	children := make([]Node, 0, len(server.Entry.State.Deployables))
	for _, deployable := range server.Entry.State.Deployables {
		children = append(children, DeployableNode{
			ServerID:   server.Entry.Handle.ID,
			Deployable: deployable,
		})
	}
	return children
}

// Label renders the display text for a node. A server that never reported
// state shows the Unknown run state.
func (p *Projection) Label(node Node) string {
	switch n := node.(type) {
	case ServerNode:
		return fmt.Sprintf("%s:%s(%s)", n.Entry.Handle.ID, n.Entry.Handle.Type.DisplayName, runState(n.Entry).Label())
	case DeployableNode:
		return fmt.Sprintf("%s(%d)", n.Deployable.Name, n.Deployable.PublishState)
	default:
		return ""
	}
}

// ContextTag returns the resolved state label the host uses to decide which
// actions apply to a node. Server nodes are tagged with their run-state
// label, deployable nodes with their publish-state label.
func (p *Projection) ContextTag(node Node) string {
	switch n := node.(type) {
	case ServerNode:
		return runState(n.Entry).Label()
	case DeployableNode:
		return n.Deployable.PublishState.Label()
	default:
		return ""
	}
}

func runState(entry domain.ServerEntry) domain.RunState {
	if entry.State == nil {
		return domain.RunStateUnknown
	}
	return entry.State.RunState
}
