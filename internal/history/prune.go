package history

import (
	"context"
	"time"

	"github.com/metalagman/goap/internal/db"
)

// RetentionPolicy controls run cleanup.
type RetentionPolicy struct {
	KeepLast int
	KeepDays int
}

// PruneResult summarizes a prune operation.
type PruneResult struct {
	Considered int
	Kept       int
	Deleted    int
}

// PruneRuns deletes runs outside the retention policy. Running runs, the
// newest KeepLast runs and runs younger than KeepDays are kept. A policy with
// both limits unset keeps everything.
func PruneRuns(ctx context.Context, store *db.Store, policy RetentionPolicy, dryRun bool) (PruneResult, error) {
	if policy.KeepLast <= 0 && policy.KeepDays <= 0 {
		return PruneResult{}, nil
	}
	cutoff := time.Time{}
	if policy.KeepDays > 0 {
		cutoff = time.Now().UTC().Add(-time.Duration(policy.KeepDays) * 24 * time.Hour)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return PruneResult{}, err
	}

	res := PruneResult{Considered: len(runs)}
	for idx, run := range runs {
		keep := run.Status == StatusRunning
		if !keep && policy.KeepLast > 0 && idx < policy.KeepLast {
			keep = true
		}
		if !keep && policy.KeepDays > 0 {
			createdAt, parseErr := time.Parse(time.RFC3339, run.CreatedAt)
			if parseErr != nil || createdAt.After(cutoff) {
				keep = true
			}
		}
		if keep {
			res.Kept++
			continue
		}
		if !dryRun {
			if err := store.DeleteRun(ctx, run.RunID); err != nil {
				return res, err
			}
		}
		res.Deleted++
	}
	return res, nil
}
