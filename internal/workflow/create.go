package workflow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"serverview/internal/domain"
)

// Prompter is the host-shell collaborator that gathers user input. Each
// method returns ok=false when the user cancels.
type Prompter interface {
	// SelectDirectory prompts for a single root directory.
	SelectDirectory(ctx context.Context) (path string, ok bool, err error)
	// InputName prompts for a proposed server identifier. validate is
	// applied before the prompt returns; the prompter re-asks on failure
	// or surfaces the validation message, at its discretion.
	InputName(ctx context.Context, validate func(string) error) (name string, ok bool, err error)
}

// RegistryView is the registry surface used for name validation.
type RegistryView interface {
	Has(id string) bool
}

// Result is the outcome of a completed creation pipeline.
type Result struct {
	Bean   domain.ServerBean
	Name   string
	Status domain.Status
}

// Creation is the four-stage server-creation pipeline: directory prompt,
// bean discovery, name prompt, creation request. Cancellation at any stage
// produces a nil result and no side effects; no server is ever created from
// an incomplete input set.
type Creation struct {
	control  domain.ControlService
	registry RegistryView
	prompter Prompter
	logger   *zap.Logger
}

func NewCreation(control domain.ControlService, registry RegistryView, prompter Prompter, logger *zap.Logger) *Creation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Creation{
		control:  control,
		registry: registry,
		prompter: prompter,
		logger:   logger.Named("create_workflow"),
	}
}

// Run drives the pipeline. A nil, nil return means the user canceled (or
// discovery found nothing at all) and nothing happened.
func (c *Creation) Run(ctx context.Context) (*Result, error) {
	const op = "workflow.Create"
	logger := c.logger.With(zap.String("request", uuid.NewString()))

	path, ok, err := c.prompter.SelectDirectory(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	if !ok {
		logger.Debug("directory selection canceled")
		return nil, nil
	}

	beans, err := c.control.DiscoverServerDefinitions(ctx, path)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if len(beans) == 0 {
		logger.Debug("no server definitions found", zap.String("path", path))
		return nil, nil
	}
	best := beans[0]
	if best.Category == "" || best.Category == domain.BeanCategoryUnknown {
		return nil, domain.Wrap(domain.CodeFailedPrecond, op, domain.ErrNoServerDetected)
	}

	name, ok, err := c.prompter.InputName(ctx, c.ValidateName)
	if err != nil {
		return nil, domain.Wrap(domain.CodeInternal, op, err)
	}
	if !ok {
		logger.Debug("name input canceled")
		return nil, nil
	}
	if err := c.ValidateName(name); err != nil {
		code, _ := domain.CodeFrom(err)
		return nil, domain.Wrap(code, op, err)
	}

	status, err := c.control.CreateServer(ctx, best, name)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, op, err)
	}
	if !status.OK() {
		return nil, domain.E(domain.CodeRejected, op, status.Message, nil)
	}

	logger.Info("server creation requested",
		zap.String("server", name),
		zap.String("category", best.Category),
		zap.String("location", best.Location),
	)
	return &Result{Bean: best, Name: name, Status: status}, nil
}

// ValidateName rejects empty or whitespace-only identifiers and identifiers
// already present in the registry.
func (c *Creation) ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrEmptyName
	}
	if c.registry.Has(name) {
		return domain.ErrDuplicateName
	}
	return nil
}
