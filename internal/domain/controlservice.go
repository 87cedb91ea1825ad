package domain

import "context"

// ControlService is the out-of-process collaborator that owns the managed
// servers. The engine only consumes its view of the world; process launch
// mechanics and the wire protocol live behind this interface.
type ControlService interface {
	// ListServers returns the handles known at subscription time, used for
	// initial registry population.
	ListServers(ctx context.Context) ([]ServerHandle, error)

	// Events returns the push stream of lifecycle and output events. The
	// channel is closed when ctx is canceled or the service goes away.
	Events(ctx context.Context) (<-chan ControlEvent, error)

	// DiscoverServerDefinitions enumerates candidate server definitions
	// rooted at path, best candidate first.
	DiscoverServerDefinitions(ctx context.Context, path string) ([]ServerBean, error)

	// CreateServer asks the service to instantiate a server from bean under
	// the given name. A Status with severity above zero is a rejection.
	CreateServer(ctx context.Context, bean ServerBean, name string) (Status, error)
}
