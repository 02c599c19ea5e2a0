package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"github.com/dom/donutdot/internal/repository/postgres"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSession(t *testing.T, repos *repository.Repositories, startedAt time.Time, duration time.Duration) *domain.ChatSession {
	t.Helper()

	ctx := context.Background()
	match := domain.NewMatch(testutil.NewUserID(), testutil.NewUserID(), startedAt)
	_, err := repos.Match.Create(ctx, match)
	require.NoError(t, err)

	pass := testutil.GivePass(t, repos.Pass, match.InitiatorID, startedAt.Add(-time.Hour), 24*time.Hour)
	session := domain.NewChatSession(match, pass, startedAt, duration)
	require.NoError(t, repos.ChatSession.Create(ctx, session))
	return session
}

func TestChatSessionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	repo := repos.ChatSession
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("FindByMatchID", func(t *testing.T) {
		session := createSession(t, repos, start, 6*time.Hour)

		got, err := repo.FindByMatchID(ctx, session.MatchID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.ID, got.ID)

		missing, err := repo.FindByMatchID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)

		batch, err := repo.FindByMatchIDs(ctx, []uuid.UUID{session.MatchID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, batch, 1)
	})

	t.Run("one session per match", func(t *testing.T) {
		session := createSession(t, repos, start, 6*time.Hour)

		dup := *session
		dup.ID = uuid.New()
		dup.PassID = uuid.New()
		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("ActiveByUser honours expiry", func(t *testing.T) {
		session := createSession(t, repos, start, 6*time.Hour)

		active, err := repo.ActiveByUser(ctx, session.UserAID, start.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, session.ID, active.ID)

		active, err = repo.ActiveByUser(ctx, session.UserBID, session.ExpiresAt)
		require.NoError(t, err)
		assert.Nil(t, active)
	})
}

func TestChatSessionRepository_ExpiryNotification(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	repo := repos.ChatSession
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expired := createSession(t, repos, start, time.Hour)
	running := createSession(t, repos, start, 6*time.Hour)

	now := start.Add(time.Hour)
	due, err := repo.ListExpiredUnnotified(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, expired.ID, due[0].ID)
	assert.NotEqual(t, running.ID, due[0].ID)

	const claimers = 6
	var (
		wg     sync.WaitGroup
		claims atomic.Int32
	)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ClaimNotification(ctx, expired.ID)
			assert.NoError(t, err)
			if ok {
				claims.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), claims.Load())

	due, err = repo.ListExpiredUnnotified(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
