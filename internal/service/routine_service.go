package service

import (
	"context"
	"fmt"
	"strings"

	"gymrace/internal/cache"
	"gymrace/internal/models"
	"gymrace/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ExerciseCatalog reports exercise names it does not know.
type ExerciseCatalog interface {
	Unknown(names []string) []string
}

// RoutineInput is the editable part of a routine.
type RoutineInput struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Difficulty       models.Difficulty `json:"difficulty"`
	ExerciseNames    []string          `json:"exercise_names"`
	ShareWithFriends bool              `json:"share_with_friends"`
}

// RoutineService owns routine validation and ownership checks.
type RoutineService struct {
	routines repository.RoutineRepository
	friends  repository.FriendRepository
	catalog  ExerciseCatalog
	rdb      *redis.Client
}

// NewRoutineService returns a new RoutineService. rdb may be nil.
func NewRoutineService(routines repository.RoutineRepository, friends repository.FriendRepository, catalog ExerciseCatalog, rdb *redis.Client) *RoutineService {
	return &RoutineService{routines: routines, friends: friends, catalog: catalog, rdb: rdb}
}

func (s *RoutineService) validate(in *RoutineInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" {
		return models.NewValidationError("Routine name is required")
	}
	if !in.Difficulty.Valid() {
		return models.NewValidationError("Difficulty must be Easy, Medium or Hard")
	}
	names := make([]string, 0, len(in.ExerciseNames))
	for _, n := range in.ExerciseNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return models.NewValidationError("Select at least one exercise")
	}
	if s.catalog != nil {
		if unknown := s.catalog.Unknown(names); len(unknown) > 0 {
			return models.NewValidationError(fmt.Sprintf("Unknown exercises: %s", strings.Join(unknown, ", ")))
		}
	}
	in.ExerciseNames = names
	return nil
}

func (s *RoutineService) Create(ctx context.Context, ownerID string, in RoutineInput) (*models.Routine, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	routine := &models.Routine{
		Name:             in.Name,
		Description:      in.Description,
		Difficulty:       in.Difficulty,
		ExerciseNames:    models.StringList(in.ExerciseNames),
		OwnerID:          ownerID,
		ShareWithFriends: in.ShareWithFriends,
	}
	if err := s.routines.Create(ctx, routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// Get returns a routine the caller owns, or one a friend shares with them.
// Routines the caller may not see are reported as not found.
func (s *RoutineService) Get(ctx context.Context, callerID, id string) (*models.Routine, error) {
	var routine models.Routine
	err := cache.CacheAside(ctx, s.rdb, cache.RoutineKey(id), &routine, cache.RoutineTTL, func() error {
		r, err := s.routines.GetByID(ctx, id)
		if err != nil {
			return err
		}
		routine = *r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if routine.OwnedBy(callerID) {
		return &routine, nil
	}
	if routine.ShareWithFriends {
		friend, err := s.friends.HasEdge(ctx, callerID, routine.OwnerID)
		if err != nil {
			return nil, err
		}
		if friend {
			return &routine, nil
		}
	}
	return nil, models.NewNotFoundError("Routine", id)
}

func (s *RoutineService) ListMine(ctx context.Context, ownerID string) ([]models.Routine, error) {
	return s.routines.ListByOwner(ctx, ownerID)
}

// ListSharedWithMe returns routines shared by owners in the caller's friend list.
func (s *RoutineService) ListSharedWithMe(ctx context.Context, userID string) ([]models.Routine, error) {
	return s.routines.ListSharedWith(ctx, userID)
}

// owned loads the routine from storage and checks ownership before any write.
func (s *RoutineService) owned(ctx context.Context, callerID, id string) (*models.Routine, error) {
	routine, err := s.routines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !routine.OwnedBy(callerID) {
		return nil, models.NewPermissionError("Only the owner can change this routine")
	}
	return routine, nil
}

func (s *RoutineService) Update(ctx context.Context, callerID, id string, in RoutineInput) (*models.Routine, error) {
	routine, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	routine.Name = in.Name
	routine.Description = in.Description
	routine.Difficulty = in.Difficulty
	routine.ExerciseNames = models.StringList(in.ExerciseNames)
	routine.ShareWithFriends = in.ShareWithFriends

	if err := s.routines.Update(ctx, routine); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, s.rdb, cache.RoutineKey(id))
	return routine, nil
}

func (s *RoutineService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.routines.Delete(ctx, id); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.rdb, cache.RoutineKey(id))
	return nil
}
