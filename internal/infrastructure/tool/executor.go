package tool

import (
	"context"
	"time"

	"github.com/dharti/dharti/bridge/internal/domain/service"
	domaintool "github.com/dharti/dharti/bridge/internal/domain/tool"
	pkgerrors "github.com/dharti/dharti/bridge/pkg/errors"
	"go.uber.org/zap"
)

// Executor dispatches tool calls against the registry. It is the only
// path from the reasoning loop to a remote operation.
type Executor struct {
	registry domaintool.Registry
	logger   *zap.Logger
}

var _ service.ToolExecutor = (*Executor)(nil)

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry domaintool.Registry, logger *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger.With(zap.String("component", "tool-executor")),
	}
}

// Execute runs the named tool with the given arguments.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]interface{}) (*domaintool.Result, error) {
	t, ok := e.registry.Get(name)
	if !ok {
		return nil, pkgerrors.NewToolNotFoundError(name)
	}

	start := time.Now()
	result, err := t.Execute(ctx, args)
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("Tool execution failed",
			zap.String("tool", name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Info("Tool executed",
		zap.String("tool", name),
		zap.String("kind", string(t.Kind())),
		zap.Bool("success", result.Success),
		zap.Duration("duration", duration),
	)
	return result, nil
}

// Definitions returns the tool catalog in registration order.
func (e *Executor) Definitions() []domaintool.Definition {
	return e.registry.List()
}

// Lookup returns the tool by name.
func (e *Executor) Lookup(name string) (domaintool.Tool, bool) {
	return e.registry.Get(name)
}
