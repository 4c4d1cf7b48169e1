// Package stageexec runs one pipeline stage with uniform logging: a start
// line, a completion line with the elapsed time, or a failure line carrying
// the error classification.
package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yoloprep/internal/logging"
	"yoloprep/internal/pipeline"
)

// Func is the body of a stage. The logger is already scoped to the stage.
type Func func(ctx context.Context, logger *slog.Logger) error

// Options names the stage and supplies the base logger.
type Options struct {
	Logger    *slog.Logger
	StageName string
}

// Run executes fn inside a stage-scoped context and logger.
func Run(ctx context.Context, opts Options, fn Func) error {
	if fn == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}

	stageCtx := pipeline.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	start := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx, stageLogger); err != nil {
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_kind", classify(err)),
			logging.String("error_message", strings.TrimSpace(err.Error())),
			logging.Duration("elapsed", time.Since(start)),
		)
		return err
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, pipeline.ErrValidation):
		return "validation"
	case errors.Is(err, pipeline.ErrFatalData):
		return "fatal_data"
	case errors.Is(err, pipeline.ErrConfiguration):
		return "configuration"
	case errors.Is(err, pipeline.ErrNotFound):
		return "not_found"
	default:
		return "io"
	}
}
