// Package seed creates demo data for development databases. It is not used
// by the server itself.
package seed

import (
	"fmt"
	"strings"

	"gymrace/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var routineThemes = []string{
	"Leg Day", "Upper Body", "Core Blast", "Full Body", "Morning Mobility",
	"Cardio Burn", "Push Day", "Pull Day", "Quick Ten", "Recovery Flow",
}

// Factory builds domain entities and persists them. A fixed seed makes the
// generated data repeatable.
type Factory struct {
	db        *gorm.DB
	faker     *gofakeit.Faker
	exercises []string
}

// NewFactory returns a Factory drawing routine exercises from exercises.
// A zero seed picks a random one.
func NewFactory(db *gorm.DB, exercises []string, seed int64) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), exercises: exercises}
}

// BuildUser returns an unsaved profile.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		ID:        f.faker.UUID(),
		Username:  fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.faker.Number(100, 999)),
		Email:     f.faker.Email(),
		IsPrivate: f.faker.Number(1, 4) == 1,
		Age:       f.faker.Number(18, 70),
		HeightCm:  f.faker.Number(150, 200),
		WeightKg:  f.faker.Number(50, 110),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildRoutine returns an unsaved routine of two to five distinct exercises.
func (f *Factory) BuildRoutine(owner *models.User, overrides ...func(*models.Routine)) *models.Routine {
	names := append([]string(nil), f.exercises...)
	f.faker.ShuffleStrings(names)
	n := f.faker.Number(2, 5)
	if n > len(names) {
		n = len(names)
	}

	routine := &models.Routine{
		Name:             f.faker.RandomString(routineThemes),
		Description:      f.faker.Sentence(8),
		Difficulty:       models.Difficulty(f.faker.RandomString([]string{"Easy", "Medium", "Hard"})),
		ExerciseNames:    models.StringList(names[:n]),
		OwnerID:          owner.ID,
		ShareWithFriends: f.faker.Bool(),
	}
	for _, override := range overrides {
		override(routine)
	}
	return routine
}

func (f *Factory) CreateRoutine(owner *models.User, overrides ...func(*models.Routine)) (*models.Routine, error) {
	routine := f.BuildRoutine(owner, overrides...)
	if err := f.db.Create(routine).Error; err != nil {
		return nil, fmt.Errorf("create routine: %w", err)
	}
	return routine, nil
}

// CreateFriendEdge puts friend in owner's list.
func (f *Factory) CreateFriendEdge(owner, friend *models.User) error {
	edge := &models.FriendEdge{OwnerID: owner.ID, FriendID: friend.ID}
	if err := f.db.Create(edge).Error; err != nil {
		return fmt.Errorf("create friend edge: %w", err)
	}
	return nil
}

// BuildChallenge returns an unsaved challenge in a random lifecycle state
// whose progress agrees with its status.
func (f *Factory) BuildChallenge(creator, participant *models.User, overrides ...func(*models.Challenge)) *models.Challenge {
	target := f.faker.Number(2, 10) * 10
	c := &models.Challenge{
		Name:              fmt.Sprintf("%s showdown", f.faker.RandomString(routineThemes)),
		Description:       f.faker.Sentence(6),
		CreatorID:         creator.ID,
		ParticipantID:     participant.ID,
		Exercise:          f.faker.RandomString(f.exercises),
		TargetRepetitions: target,
		Status:            models.ChallengePending,
	}

	switch f.faker.Number(0, 3) {
	case 1:
		c.Status = models.ChallengeAccepted
	case 2:
		c.Status = models.ChallengeInProgress
		c.CreatorProgress = f.faker.Number(0, target-1)
		c.ParticipantProgress = f.faker.Number(0, target-1)
	case 3:
		c.Status = models.ChallengeCompleted
		c.CreatorProgress = f.faker.Number(0, target)
		c.ParticipantProgress = target
		if f.faker.Bool() {
			c.CreatorProgress, c.ParticipantProgress = c.ParticipantProgress, c.CreatorProgress
		}
	}

	for _, override := range overrides {
		override(c)
	}
	return c
}

// CreateChallenge persists a challenge. Pending ones also get the
// participant's notification, as a real invitation would.
func (f *Factory) CreateChallenge(creator, participant *models.User, overrides ...func(*models.Challenge)) (*models.Challenge, error) {
	c := f.BuildChallenge(creator, participant, overrides...)
	return c, f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("create challenge: %w", err)
		}
		if c.Status != models.ChallengePending {
			return nil
		}
		n := &models.Notification{
			RecipientID: participant.ID,
			SenderID:    creator.ID,
			Type:        models.NotificationChallenge,
			ReferenceID: c.ID,
			Message:     fmt.Sprintf("%s challenged you to %s: %d x %s", creator.DisplayName(), c.Name, c.TargetRepetitions, c.Exercise),
		}
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("create challenge notification: %w", err)
		}
		return nil
	})
}

// CreateFriendRequest leaves to a pending request from from.
func (f *Factory) CreateFriendRequest(from, to *models.User) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID: to.ID,
		SenderID:    from.ID,
		Type:        models.NotificationRequest,
		Message:     fmt.Sprintf("%s wants to be your friend", from.DisplayName()),
	}
	if err := f.db.Create(n).Error; err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return n, nil
}
