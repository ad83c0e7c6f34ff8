package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Outcome classifies how a command run ended.
type Outcome string

const (
	OutcomeSucceeded   Outcome = "succeeded"
	OutcomeFailed      Outcome = "failed"
	OutcomeInterrupted Outcome = "interrupted"
)

// Text codes attached to wrapped command errors.
const (
	CodeInvalidMessage = "PORTFOLIO_COMMAND_INVALID"
	CodeCancelled      = "PORTFOLIO_COMMAND_CANCELLED"
	CodeTimedOut       = "PORTFOLIO_COMMAND_TIMEOUT"
	CodeFailed         = "PORTFOLIO_COMMAND_FAILED"
)

// Report is handed to a Reporter once a command run finishes.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Err       error
	Outcome   Outcome
	Logger    interfaces.Logger
}

// Reporter replaces the default outcome log line.
type Reporter[T command.Message] func(ctx context.Context, msg T, report Report)

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeInterrupted
	default:
		return OutcomeFailed
	}
}

func invalidMessage(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(CodeInvalidMessage)
}

// failure wraps a non-validation error exactly once. Errors that already
// carry a go-errors category pass through untouched.
func failure(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(CodeTimedOut)
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command cancelled").
			WithTextCode(CodeCancelled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
			WithTextCode(CodeFailed)
	}
}
