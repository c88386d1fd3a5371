package seed

import (
	"fmt"
	"log/slog"

	"gymrace/internal/models"
	"gymrace/internal/observability"

	"gorm.io/gorm"
)

// Options controls how much data Run creates.
type Options struct {
	NumUsers        int
	RoutinesPerUser int
	FriendsPerUser  int
	NumChallenges   int
	ShouldClean     bool
}

// DefaultOptions is a small but fully connected demo graph.
var DefaultOptions = Options{
	NumUsers:        12,
	RoutinesPerUser: 2,
	FriendsPerUser:  3,
	NumChallenges:   10,
	ShouldClean:     true,
}

// Result counts what Run wrote.
type Result struct {
	Users       int
	Routines    int
	FriendEdges int
	Requests    int
	Challenges  int
}

// Seeder fills a database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder returns a Seeder whose routines and challenges use exercises.
func NewSeeder(db *gorm.DB, exercises []string, seed int64) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, exercises, seed)}
}

// ClearAll removes every row the seeder can create, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Notification{},
		&models.Challenge{},
		&models.FriendEdge{},
		&models.Routine{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedUsers creates n profiles.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedFriendMesh links every user to the next perUser users in a ring.
// Public targets are added directly; private ones get a friend request
// instead, mirroring the connect flow.
func (s *Seeder) SeedFriendMesh(users []*models.User, perUser int) (edges, requests int, err error) {
	if len(users) < 2 {
		return 0, 0, nil
	}
	if perUser >= len(users) {
		perUser = len(users) - 1
	}
	for i, owner := range users {
		for k := 1; k <= perUser; k++ {
			target := users[(i+k)%len(users)]
			if target.IsPrivate {
				if _, err := s.factory.CreateFriendRequest(owner, target); err != nil {
					return edges, requests, err
				}
				requests++
				continue
			}
			if err := s.factory.CreateFriendEdge(owner, target); err != nil {
				return edges, requests, err
			}
			edges++
		}
	}
	return edges, requests, nil
}

// SeedRoutines creates perUser routines for each user.
func (s *Seeder) SeedRoutines(users []*models.User, perUser int) (int, error) {
	created := 0
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			if _, err := s.factory.CreateRoutine(u); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// SeedChallenges creates n challenges between distinct users.
func (s *Seeder) SeedChallenges(users []*models.User, n int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	for i := 0; i < n; i++ {
		creator := users[i%len(users)]
		participant := users[(i+1+i/len(users))%len(users)]
		if participant.ID == creator.ID {
			participant = users[(i+1)%len(users)]
		}
		if _, err := s.factory.CreateChallenge(creator, participant); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Run applies opts end to end.
func (s *Seeder) Run(opts Options) (Result, error) {
	var res Result
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return res, err
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return res, err
	}
	res.Users = len(users)

	if res.FriendEdges, res.Requests, err = s.SeedFriendMesh(users, opts.FriendsPerUser); err != nil {
		return res, err
	}
	if res.Routines, err = s.SeedRoutines(users, opts.RoutinesPerUser); err != nil {
		return res, err
	}
	if res.Challenges, err = s.SeedChallenges(users, opts.NumChallenges); err != nil {
		return res, err
	}

	observability.Logger.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("routines", res.Routines),
		slog.Int("friend_edges", res.FriendEdges),
		slog.Int("friend_requests", res.Requests),
		slog.Int("challenges", res.Challenges),
	)
	return res, nil
}
