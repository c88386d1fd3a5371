package workout

import (
	"context"
	"fmt"

	"gymrace/internal/models"
)

// RoutineLoader fetches the routine a user wants to run.
type RoutineLoader interface {
	Load(ctx context.Context, userID, routineID string) (*models.Routine, error)
}

// SourceFunc looks a routine up in one place. It returns a NOT_FOUND
// AppError, or a nil routine, when the routine is not there.
type SourceFunc func(ctx context.Context, userID, routineID string) (*models.Routine, error)

// ChainLoader tries each source in order and returns the first routine
// with at least one exercise. Fetch errors stop the chain.
type ChainLoader []SourceFunc

func (l ChainLoader) Load(ctx context.Context, userID, routineID string) (*models.Routine, error) {
	for _, source := range l {
		routine, err := source(ctx, userID, routineID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				continue
			}
			return nil, fmt.Errorf("load routine %s: %w", routineID, err)
		}
		if routine == nil || len(routine.ExerciseNames) == 0 {
			continue
		}
		return routine, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRoutineNotFound, routineID)
}

// RoutineSources is the lookup surface ChainLoader needs from storage.
type RoutineSources interface {
	GetOwned(ctx context.Context, ownerID, id string) (*models.Routine, error)
	GetSharedWith(ctx context.Context, userID, id string) (*models.Routine, error)
}

// NewRoutineLoader checks the user's own routines first, then routines
// shared by the user's friends.
func NewRoutineLoader(sources RoutineSources) ChainLoader {
	return ChainLoader{sources.GetOwned, sources.GetSharedWith}
}
