// Package history records planning runs and their timelines, and prunes old
// ones.
package history

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/metalagman/goap/internal/db"
	"github.com/rs/zerolog"
)

// Run kinds.
const (
	KindPlan  = "plan"
	KindPrune = "prune"
)

// Final run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusNoPlan  = "no_plan"
	StatusFailed  = "failed"
)

// Recorder writes runs to the store.
type Recorder struct {
	store  *db.Store
	logger zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store *db.Store, logger zerolog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Run is one recorded planning invocation.
type Run struct {
	ID  string
	rec *Recorder
}

// Start creates a run record.
func (r *Recorder) Start(ctx context.Context, kind, goal string) (*Run, error) {
	runID, err := newRunID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	if err := r.store.CreateRun(ctx, runID, kind, goal); err != nil {
		return nil, err
	}
	r.logger.Debug().Str("run_id", runID).Str("kind", kind).Str("goal", goal).Msg("run started")
	return &Run{ID: runID, rec: r}, nil
}

// Event appends a timeline entry. data, when not nil, is stored as JSON.
func (run *Run) Event(ctx context.Context, typ, message string, data any) error {
	ev := db.Event{Type: typ, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", typ, err)
		}
		ev.DataJSON = string(raw)
	}
	return run.rec.store.AppendEvent(ctx, run.ID, ev)
}

// Finish stores the final status and summary.
func (run *Run) Finish(ctx context.Context, status, summary string) error {
	if err := run.rec.store.FinishRun(ctx, run.ID, status, summary); err != nil {
		return err
	}
	run.rec.logger.Debug().Str("run_id", run.ID).Str("status", status).Msg("run finished")
	return nil
}

func newRunID() (string, error) {
	suffix, err := randomHex(3)
	if err != nil {
		return "", err
	}
	ts := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("%s-%s", ts, suffix), nil
}

func randomHex(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
