package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"github.com/dom/donutdot/internal/repository/postgres"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	ctx := context.Background()

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, testutil.NewUserID())
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Upsert keeps moderation flags and preferences", func(t *testing.T) {
		prefs := domain.Filters{MinAge: 20, MaxAge: 30, Location: "Lyon"}
		existing := testutil.NewProfileBuilder().
			Verified().
			WithPreferences(prefs).
			Build(t, repo)
		require.NoError(t, repo.SetBanned(ctx, existing.UserID, true))

		err := repo.Upsert(ctx, &domain.Profile{
			UserID:    existing.UserID,
			Name:      "Renamed",
			Age:       31,
			Location:  "Paris",
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, existing.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Equal(t, 31, got.Age)
		assert.Equal(t, "Paris", got.Location)
		assert.True(t, got.Verified)
		assert.True(t, got.Banned)
		assert.Equal(t, prefs, got.Preferences.Data())
	})

	t.Run("Upsert inserts a new profile", func(t *testing.T) {
		id := testutil.NewUserID()
		now := time.Now().UTC()
		require.NoError(t, repo.Upsert(ctx, &domain.Profile{
			UserID: id, Name: "Fresh", Age: 22, Location: "Oslo", CreatedAt: now, UpdatedAt: now,
		}))

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", got.Name)
		assert.False(t, got.Banned)
		assert.False(t, got.Verified)
	})

	t.Run("column updates on a missing profile", func(t *testing.T) {
		missing := testutil.NewUserID()
		assert.ErrorIs(t, repo.SetBanned(ctx, missing, true), domain.ErrProfileNotFound)
		assert.ErrorIs(t, repo.MarkVerified(ctx, missing, time.Now()), domain.ErrProfileNotFound)
		assert.ErrorIs(t, repo.UpdatePreferences(ctx, missing, domain.DefaultFilters()), domain.ErrProfileNotFound)
	})

	t.Run("MarkVerified records the instant", func(t *testing.T) {
		p := testutil.NewProfileBuilder().Build(t, repo)
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, repo.MarkVerified(ctx, p.UserID, at))

		got, err := repo.GetByID(ctx, p.UserID)
		require.NoError(t, err)
		assert.True(t, got.Verified)
		require.NotNil(t, got.VerifiedAt)
		assert.True(t, got.VerifiedAt.Equal(at))
	})

	t.Run("GetByIDs", func(t *testing.T) {
		a := testutil.NewProfileBuilder().Build(t, repo)
		b := testutil.NewProfileBuilder().Build(t, repo)

		got, err := repo.GetByIDs(ctx, []int64{a.UserID, b.UserID, testutil.NewUserID()})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		empty, err := repo.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestProfileRepository_ListCandidates(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewProfileRepository(testDB.DB)
	likes := postgres.NewLikeRepository(testDB.DB)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	viewer := testutil.NewProfileBuilder().WithLocation("Berlin").Build(t, repo)
	older := testutil.NewProfileBuilder().WithAge(28).CreatedAt(base).Build(t, repo)
	newer := testutil.NewProfileBuilder().WithAge(24).Verified().WithGender("female").CreatedAt(base.Add(48 * time.Hour)).Build(t, repo)
	paris := testutil.NewProfileBuilder().WithAge(26).WithLocation("Paris").CreatedAt(base.Add(24 * time.Hour)).Build(t, repo)
	banned := testutil.NewProfileBuilder().Banned().Build(t, repo)
	liked := testutil.NewProfileBuilder().Build(t, repo)
	incomplete := testutil.NewProfileBuilder().WithLocation("").Build(t, repo)

	_, err := likes.Create(ctx, &domain.LikeEdge{FromUserID: viewer.UserID, ToUserID: liked.UserID})
	require.NoError(t, err)

	ids := func(profiles []*domain.Profile) []int64 {
		out := make([]int64, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, p.UserID)
		}
		return out
	}

	tests := []struct {
		name    string
		filters domain.Filters
		exclude []int64
		limit   int
		want    []int64
	}{
		{
			name:    "default filters newest first",
			filters: domain.DefaultFilters(),
			want:    []int64{newer.UserID, paris.UserID, older.UserID},
		},
		{
			name:    "age range",
			filters: domain.Filters{MinAge: 25, MaxAge: 30},
			want:    []int64{paris.UserID, older.UserID},
		},
		{
			name:    "location",
			filters: domain.Filters{MinAge: domain.MinAge, MaxAge: domain.MaxAge, Location: "Paris"},
			want:    []int64{paris.UserID},
		},
		{
			name:    "verified only",
			filters: domain.Filters{MinAge: domain.MinAge, MaxAge: domain.MaxAge, VerifiedOnly: true},
			want:    []int64{newer.UserID},
		},
		{
			name:    "gender",
			filters: domain.Filters{MinAge: domain.MinAge, MaxAge: domain.MaxAge, Gender: "female"},
			want:    []int64{newer.UserID},
		},
		{
			name:    "excluded ids",
			filters: domain.DefaultFilters(),
			exclude: []int64{newer.UserID, older.UserID},
			want:    []int64{paris.UserID},
		},
		{
			name:    "limit",
			filters: domain.DefaultFilters(),
			limit:   1,
			want:    []int64{newer.UserID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListCandidates(ctx, repository.CandidateQuery{
				ViewerID: viewer.UserID,
				Filters:  tt.filters,
				Exclude:  tt.exclude,
				Limit:    tt.limit,
			})
			require.NoError(t, err)

			gotIDs := ids(got)
			assert.Equal(t, tt.want, gotIDs)
			assert.NotContains(t, gotIDs, viewer.UserID)
			assert.NotContains(t, gotIDs, banned.UserID)
			assert.NotContains(t, gotIDs, liked.UserID)
			assert.NotContains(t, gotIDs, incomplete.UserID)
		})
	}
}
