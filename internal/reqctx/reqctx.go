// Package reqctx carries per-run identity through the context.
package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// Run identifies one scrape invocation
type Run struct {
	ID        string
	Username  string
	StartTime time.Time
}

// WithRun starts a new run for username, stores it on ctx and attaches a
// logger tagged with the run ID and user.
func WithRun(ctx context.Context, base zerolog.Logger, username string) (context.Context, *Run) {
	run := &Run{
		ID:        uuid.NewString(),
		Username:  username,
		StartTime: time.Now(),
	}
	logger := base.With().Str("run_id", run.ID).Str("user", username).Logger()
	ctx = context.WithValue(ctx, runKey, run)
	return logger.WithContext(ctx), run
}

// FromContext returns the current run, or a placeholder when none was started.
func FromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey).(*Run); ok {
		return r
	}
	return &Run{ID: "unknown", StartTime: time.Now()}
}

// Elapsed is the time since the run started
func (r *Run) Elapsed() time.Duration {
	return time.Since(r.StartTime)
}

// RunError tags an error with the run that produced it
type RunError struct {
	RunID string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Wrap attaches the current run ID to err. A nil err stays nil.
func Wrap(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{RunID: FromContext(ctx).ID, Err: err}
}
