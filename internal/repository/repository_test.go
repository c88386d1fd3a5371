package repository

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"gymrace/internal/models"
	"gymrace/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestRoutineRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoutineRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		routineID     string
		mockBehavior  func()
		expectedName  string
		expectedError string
	}{
		{
			name:      "Success",
			routineID: "r1",
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "difficulty", "exercise_names", "owner_id"}).
					AddRow("r1", "Leg Day", "Hard", `["Squat","Lunge"]`, "u1")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "routines" WHERE id = $1 ORDER BY "routines"."id" LIMIT $2`)).
					WithArgs("r1", 1).
					WillReturnRows(rows)
			},
			expectedName: "Leg Day",
		},
		{
			name:      "Not Found",
			routineID: "missing",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "routines" WHERE id = $1 ORDER BY "routines"."id" LIMIT $2`)).
					WithArgs("missing", 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			routine, err := repo.GetByID(ctx, tt.routineID)

			if tt.expectedError != "" {
				assert.True(t, models.HasCode(err, tt.expectedError))
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.expectedName, routine.Name)
				assert.Equal(t, models.StringList{"Squat", "Lunge"}, routine.ExerciseNames)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestChallengeRepository_AcceptIsConditional(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewChallengeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "challenges" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND participant_id = $4 AND status = $5`)).
		WithArgs(string(models.ChallengeAccepted), sqlmock.AnyArg(), "c1", "bob", string(models.ChallengePending)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.Accept(context.Background(), "c1", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func seedChallenge(t *testing.T, db *gorm.DB, status models.ChallengeStatus) *models.Challenge {
	t.Helper()
	c := &models.Challenge{
		Name:              "Pushup race",
		CreatorID:         "alice",
		ParticipantID:     "bob",
		Exercise:          "Push Up",
		TargetRepetitions: 20,
		Status:            status,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestChallengeRepository_UpdateProgressDerivesStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	c := seedChallenge(t, db, models.ChallengeAccepted)

	res, err := repo.UpdateProgress(ctx, c.ID, models.RoleCreator, 5)
	require.NoError(t, err)
	assert.Equal(t, ProgressResult{Matched: true}, res)
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CreatorProgress)
	assert.Equal(t, models.ChallengeInProgress, got.Status)

	res, err = repo.UpdateProgress(ctx, c.ID, models.RoleParticipant, 20)
	require.NoError(t, err)
	assert.Equal(t, ProgressResult{Matched: true, Completed: true}, res)
	got, _ = repo.GetByID(ctx, c.ID)
	assert.Equal(t, 20, got.ParticipantProgress)
	assert.Equal(t, models.ChallengeCompleted, got.Status)

	res, err = repo.UpdateProgress(ctx, c.ID, models.RoleCreator, 30)
	require.NoError(t, err)
	assert.Equal(t, ProgressResult{Matched: true}, res, "an already completed challenge is not completed again")
	got, _ = repo.GetByID(ctx, c.ID)
	assert.Equal(t, 30, got.CreatorProgress)
	assert.Equal(t, models.ChallengeCompleted, got.Status)

	_, err = repo.UpdateProgress(ctx, c.ID, models.RoleCreator, 3)
	require.NoError(t, err)
	got, _ = repo.GetByID(ctx, c.ID)
	assert.Equal(t, 3, got.CreatorProgress)
	assert.Equal(t, models.ChallengeCompleted, got.Status)
}

func TestChallengeRepository_ConcurrentCompletionReportedOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChallengeRepository(db)
	c := seedChallenge(t, db, models.ChallengeInProgress)

	const writers = 8
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		completed atomic.Int32
	)
	for i := 0; i < writers; i++ {
		i := i
		role := models.RoleCreator
		if i%2 == 1 {
			role = models.RoleParticipant
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := repo.UpdateProgress(context.Background(), c.ID, role, 20+i)
			assert.NoError(t, err)
			assert.True(t, res.Matched)
			if res.Completed {
				completed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), completed.Load())
	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChallengeCompleted, got.Status)
}

func TestChallengeRepository_UpdateProgressSkipsPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChallengeRepository(db)

	c := seedChallenge(t, db, models.ChallengePending)

	res, err := repo.UpdateProgress(context.Background(), c.ID, models.RoleCreator, 50)
	require.NoError(t, err)
	assert.Equal(t, ProgressResult{}, res)

	got, _ := repo.GetByID(context.Background(), c.ID)
	assert.Equal(t, 0, got.CreatorProgress)
	assert.Equal(t, models.ChallengePending, got.Status)
}

func TestChallengeRepository_AcceptAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	c := seedChallenge(t, db, models.ChallengePending)

	ok, err := repo.Accept(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.False(t, ok, "only the participant may accept")

	ok, err = repo.Accept(ctx, c.ID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Accept(ctx, c.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok, "second accept matches nothing")

	for _, user := range []string{"alice", "bob"} {
		list, err := repo.ListForUser(ctx, user)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	list, err := repo.ListForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFriendRepository_AddEdgeIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))
	require.NoError(t, repo.AddEdge(ctx, "alice", "bob"))

	ids, err := repo.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, ids)

	has, err := repo.HasEdge(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, has, "edges are directed")

	require.NoError(t, repo.RemoveEdge(ctx, "alice", "bob"))
	require.NoError(t, repo.RemoveEdge(ctx, "alice", "bob"))
	require.NoError(t, repo.RemoveEdge(ctx, "nobody", "bob"))

	ids, err = repo.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRoutineRepository_SharedWithFriends(t *testing.T) {
	db := testutil.NewDB(t)
	routines := NewRoutineRepository(db)
	friends := NewFriendRepository(db)
	ctx := context.Background()

	shared := &models.Routine{Name: "Leg Day", Difficulty: models.DifficultyHard, ExerciseNames: models.StringList{"Squat"}, OwnerID: "bob", ShareWithFriends: true}
	private := &models.Routine{Name: "Secret", Difficulty: models.DifficultyEasy, ExerciseNames: models.StringList{"Plank"}, OwnerID: "bob"}
	require.NoError(t, routines.Create(ctx, shared))
	require.NoError(t, routines.Create(ctx, private))

	list, err := routines.ListSharedWith(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, friends.AddEdge(ctx, "alice", "bob"))

	list, err = routines.ListSharedWith(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].ID)

	got, err := routines.GetSharedWith(ctx, "alice", shared.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leg Day", got.Name)

	_, err = routines.GetSharedWith(ctx, "alice", private.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = routines.GetOwned(ctx, "alice", shared.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestNotificationRepository_PendingRequests(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	none, err := repo.FindPendingRequest(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Nil(t, none)

	n := &models.Notification{RecipientID: "bob", SenderID: "alice", Type: models.NotificationRequest, Message: "alice wants to be your friend"}
	require.NoError(t, repo.Create(ctx, n))
	require.NoError(t, repo.Create(ctx, &models.Notification{RecipientID: "bob", SenderID: "alice", Type: models.NotificationChallenge, ReferenceID: "c1"}))

	found, err := repo.FindPendingRequest(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, n.ID, found.ID)

	deleted, err := repo.DeleteRequests(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	list, err := repo.ListForRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationChallenge, list[0].Type)
}

func TestUserRepository_UpsertAndLookup(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "u1", Username: "alice", Age: 30}))
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "u1", Username: "alice2", IsPrivate: true}))

	u, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.Username)
	assert.True(t, u.IsPrivate)

	users, err := repo.GetByIDs(ctx, []string{"u1", "ghost"})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = repo.GetByID(ctx, "ghost")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
