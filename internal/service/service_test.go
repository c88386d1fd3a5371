package service

import (
	"testing"

	"gymrace/internal/repository"
	"gymrace/internal/testutil"

	"gorm.io/gorm"
)

type repos struct {
	db            *gorm.DB
	users         repository.UserRepository
	routines      repository.RoutineRepository
	challenges    repository.ChallengeRepository
	friends       repository.FriendRepository
	notifications repository.NotificationRepository
}

func newRepos(t *testing.T) repos {
	t.Helper()
	db := testutil.NewDB(t)
	return repos{
		db:            db,
		users:         repository.NewUserRepository(db),
		routines:      repository.NewRoutineRepository(db),
		challenges:    repository.NewChallengeRepository(db),
		friends:       repository.NewFriendRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
}

type exerciseSet map[string]bool

func (s exerciseSet) Contains(title string) bool { return s[title] }

func (s exerciseSet) Unknown(names []string) []string {
	var out []string
	for _, n := range names {
		if !s[n] {
			out = append(out, n)
		}
	}
	return out
}

var testExercises = exerciseSet{"Squat": true, "Lunge": true, "Push Up": true, "Plank": true}
