package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_Report(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.newProfile(t)
	bob := env.newProfile(t)

	tests := []struct {
		name     string
		reporter int64
		reported int64
		reason   string
		wantErr  error
	}{
		{name: "valid", reporter: alice.UserID, reported: bob.UserID, reason: "spam"},
		{name: "self report", reporter: alice.UserID, reported: alice.UserID, reason: "x", wantErr: domain.ErrSelfReport},
		{name: "blank reason", reporter: alice.UserID, reported: bob.UserID, reason: "   ", wantErr: domain.ErrMissingReason},
		{name: "unknown profile", reporter: alice.UserID, reported: 777777, reason: "spam", wantErr: domain.ErrProfileNotFound},
		{name: "missing reporter", reporter: 0, reported: bob.UserID, reason: "spam", wantErr: domain.ErrInvalidUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := env.svc.Moderation.Report(ctx, tt.reporter, tt.reported, tt.reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.ReportStatusPending, report.Status)
			assert.Equal(t, tt.reason, report.Reason)
		})
	}
}

func TestModerationService_ReportLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.newProfile(t)
	bob := env.newProfile(t)

	report, err := env.svc.Moderation.Report(ctx, alice.UserID, bob.UserID, strings.Repeat("a", 5000))
	require.NoError(t, err)
	assert.Less(t, len(report.Reason), 5000)

	pending, err := env.svc.Moderation.Reports(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	resolved, err := env.svc.Moderation.ResolveReport(ctx, report.ID, domain.ReportStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusResolved, resolved.Status)

	pending, err = env.svc.Moderation.Reports(ctx, "pending")
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := env.svc.Moderation.Reports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.svc.Moderation.Reports(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidReportStatus)

	_, err = env.svc.Moderation.ResolveReport(ctx, report.ID, domain.ReportStatus("bogus"))
	assert.ErrorIs(t, err, domain.ErrInvalidReportStatus)
}

func TestModerationService_BanRemovesFromPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	viewer := env.newProfile(t)
	bob := env.newProfile(t)

	require.NoError(t, env.svc.Moderation.Ban(ctx, bob.UserID))

	next, err := env.svc.Candidate.Next(ctx, viewer.UserID, nil)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = env.svc.Match.Like(ctx, bob.UserID, viewer.UserID)
	assert.ErrorIs(t, err, domain.ErrUserBanned)

	require.NoError(t, env.svc.Moderation.Unban(ctx, bob.UserID))

	next, err = env.svc.Candidate.Next(ctx, viewer.UserID, nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, bob.UserID, next.UserID)

	assert.ErrorIs(t, env.svc.Moderation.Ban(ctx, 888888), domain.ErrProfileNotFound)
}

func TestModerationService_MarkVerified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	require.NoError(t, env.svc.Moderation.MarkVerified(ctx, alice.UserID))

	stored, err := env.svc.Profile.Get(ctx, alice.UserID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	require.NotNil(t, stored.VerifiedAt)
	assert.Equal(t, env.clock.Now(), *stored.VerifiedAt)
}

func TestModerationService_EmailVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	v, err := env.svc.Moderation.RequestVerification(ctx, alice.UserID, " Alice@Uni.EDU ")
	require.NoError(t, err)
	assert.NotEmpty(t, v.Token)
	assert.Equal(t, "Alice@Uni.EDU", v.Email)

	profile, err := env.svc.Moderation.ConfirmVerification(ctx, v.Token)
	require.NoError(t, err)
	assert.True(t, profile.Verified)

	stored, err := env.svc.Profile.Get(ctx, alice.UserID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
	require.NotNil(t, stored.VerifiedAt)
	assert.Equal(t, env.clock.Now(), *stored.VerifiedAt)
	require.NotNil(t, stored.University)
	assert.Equal(t, "uni.edu", *stored.University)

	sent := env.notifier.For(alice.UserID)
	require.NotEmpty(t, sent)
	assert.Contains(t, sent[len(sent)-1], "Email verified")

	// Tokens are single use.
	_, err = env.svc.Moderation.ConfirmVerification(ctx, v.Token)
	assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
}

func TestModerationService_RequestVerificationErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)
	banned := testutil.NewProfileBuilder().Banned().Build(t, env.store.Repositories().Profile)

	tests := []struct {
		name    string
		userID  int64
		email   string
		wantErr error
	}{
		{name: "missing user", userID: 0, email: "a@uni.edu", wantErr: domain.ErrInvalidUserID},
		{name: "no at sign", userID: alice.UserID, email: "uni.edu", wantErr: domain.ErrInvalidEmail},
		{name: "no local part", userID: alice.UserID, email: "@uni.edu", wantErr: domain.ErrInvalidEmail},
		{name: "bare host", userID: alice.UserID, email: "a@localhost", wantErr: domain.ErrInvalidEmail},
		{name: "unknown profile", userID: 777777, email: "a@uni.edu", wantErr: domain.ErrProfileNotFound},
		{name: "banned", userID: banned.UserID, email: "b@uni.edu", wantErr: domain.ErrUserBanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Moderation.RequestVerification(ctx, tt.userID, tt.email)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := env.svc.Moderation.ConfirmVerification(ctx, "")
	assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
	_, err = env.svc.Moderation.ConfirmVerification(ctx, "never-issued")
	assert.ErrorIs(t, err, domain.ErrVerificationNotFound)
}

func TestModerationService_GrantPass(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	pass, err := env.svc.Moderation.GrantPass(ctx, alice.UserID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pass.ReferenceID, domain.ReferenceAdminGrant+":"))
	assert.True(t, pass.IsActive(env.clock.Now()))

	require.Len(t, env.notifier.For(alice.UserID), 1)

	_, err = env.svc.Moderation.GrantPass(ctx, 999991)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
