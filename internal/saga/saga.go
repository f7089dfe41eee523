// Package saga records undo actions for multi-step mutations whose steps
// cannot share a single engine transaction, and runs them in reverse when a
// later step fails.
package saga

import (
	"context"
	"log/slog"

	"tablehub/internal/domain"
)

// UndoFunc reverts one completed step.
type UndoFunc func(ctx context.Context) error

type undo struct {
	name string
	fn   UndoFunc
}

// Saga is a stack of undo actions. It is not safe for concurrent use.
type Saga struct {
	op     string
	logger *slog.Logger
	undos  []undo
}

// New starts a saga for the named operation.
func New(op string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{op: op, logger: logger.With("component", "saga", "op", op)}
}

// OnFailure registers the undo action of a step that has just completed.
func (s *Saga) OnFailure(name string, fn UndoFunc) {
	s.undos = append(s.undos, undo{name: name, fn: fn})
}

// Len returns the number of registered undo actions.
func (s *Saga) Len() int { return len(s.undos) }

// Fail runs all registered undo actions in reverse order and returns cause.
// When any undo action fails the result is a *domain.CompensationError that
// still unwraps to cause. Each undo runs once; failures are never retried.
// Fail clears the stack, so a second call only returns cause.
func (s *Saga) Fail(ctx context.Context, cause error) error {
	undos := s.undos
	s.undos = nil

	var failures []error
	for i := len(undos) - 1; i >= 0; i-- {
		u := undos[i]
		if err := u.fn(ctx); err != nil {
			s.logger.ErrorContext(ctx, "compensation failed",
				"step", u.name, "error", err, "cause", cause, "compensation_failed", true)
			failures = append(failures, err)
			continue
		}
		s.logger.InfoContext(ctx, "compensation applied", "step", u.name)
	}
	if len(failures) > 0 {
		return &domain.CompensationError{Cause: cause, Failures: failures}
	}
	return cause
}

// Run executes fn and, when it returns an error, compensates with Fail.
func (s *Saga) Run(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		return s.Fail(ctx, err)
	}
	s.undos = nil
	return nil
}
