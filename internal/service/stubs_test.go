package service

import (
	"context"

	"gymrace/internal/models"
	"gymrace/internal/repository"
)

type friendRepoStub struct {
	addEdgeFn       func(context.Context, string, string) error
	removeEdgeFn    func(context.Context, string, string) error
	hasEdgeFn       func(context.Context, string, string) (bool, error)
	listFriendIDsFn func(context.Context, string) ([]string, error)
}

func (s *friendRepoStub) AddEdge(ctx context.Context, ownerID, friendID string) error {
	return s.addEdgeFn(ctx, ownerID, friendID)
}
func (s *friendRepoStub) RemoveEdge(ctx context.Context, ownerID, friendID string) error {
	return s.removeEdgeFn(ctx, ownerID, friendID)
}
func (s *friendRepoStub) HasEdge(ctx context.Context, ownerID, friendID string) (bool, error) {
	return s.hasEdgeFn(ctx, ownerID, friendID)
}
func (s *friendRepoStub) ListFriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	return s.listFriendIDsFn(ctx, ownerID)
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		addEdgeFn:       func(context.Context, string, string) error { return nil },
		removeEdgeFn:    func(context.Context, string, string) error { return nil },
		hasEdgeFn:       func(context.Context, string, string) (bool, error) { return false, nil },
		listFriendIDsFn: func(context.Context, string) ([]string, error) { return nil, nil },
	}
}

type challengeRepoStub struct {
	createFn         func(context.Context, *models.Challenge) error
	getByIDFn        func(context.Context, string) (*models.Challenge, error)
	listForUserFn    func(context.Context, string) ([]models.Challenge, error)
	acceptFn         func(context.Context, string, string) (bool, error)
	updateProgressFn func(context.Context, string, models.ChallengeRole, int) (repository.ProgressResult, error)
	deleteFn         func(context.Context, string) error
}

func (s *challengeRepoStub) Create(ctx context.Context, c *models.Challenge) error {
	return s.createFn(ctx, c)
}
func (s *challengeRepoStub) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	return s.getByIDFn(ctx, id)
}
func (s *challengeRepoStub) ListForUser(ctx context.Context, userID string) ([]models.Challenge, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *challengeRepoStub) Accept(ctx context.Context, id, participantID string) (bool, error) {
	return s.acceptFn(ctx, id, participantID)
}
func (s *challengeRepoStub) UpdateProgress(ctx context.Context, id string, role models.ChallengeRole, progress int) (repository.ProgressResult, error) {
	return s.updateProgressFn(ctx, id, role, progress)
}
func (s *challengeRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func challengeRepoWith(c *models.Challenge) (*challengeRepoStub, *int) {
	writes := 0
	return &challengeRepoStub{
		createFn:      func(context.Context, *models.Challenge) error { writes++; return nil },
		getByIDFn:     func(context.Context, string) (*models.Challenge, error) { cp := *c; return &cp, nil },
		listForUserFn: func(context.Context, string) ([]models.Challenge, error) { return nil, nil },
		acceptFn:      func(context.Context, string, string) (bool, error) { writes++; return true, nil },
		updateProgressFn: func(context.Context, string, models.ChallengeRole, int) (repository.ProgressResult, error) {
			writes++
			return repository.ProgressResult{Matched: true}, nil
		},
		deleteFn: func(context.Context, string) error { writes++; return nil },
	}, &writes
}
