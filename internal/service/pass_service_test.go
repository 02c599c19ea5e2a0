package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassService_ConsumeOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	older, err := env.svc.Pass.Grant(ctx, alice.UserID, "telegram:1:1")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	newer, err := env.svc.Pass.Grant(ctx, alice.UserID, "telegram:1:2")
	require.NoError(t, err)

	active, err := env.svc.Pass.ActivePass(ctx, alice.UserID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, older.ID, active.ID)

	consumed, err := env.svc.Pass.Consume(ctx, alice.UserID)
	require.NoError(t, err)
	require.NotNil(t, consumed)
	assert.Equal(t, older.ID, consumed.ID)

	consumed, err = env.svc.Pass.Consume(ctx, alice.UserID)
	require.NoError(t, err)
	require.NotNil(t, consumed)
	assert.Equal(t, newer.ID, consumed.ID)

	consumed, err = env.svc.Pass.Consume(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, consumed)
}

func TestPassService_ExpiryBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	_, err := env.svc.Pass.Grant(ctx, alice.UserID, "telegram:1:1")
	require.NoError(t, err)

	env.clock.Advance(env.cfg.PassValidity - time.Second)
	active, err := env.svc.Pass.ActivePass(ctx, alice.UserID)
	require.NoError(t, err)
	assert.NotNil(t, active)

	env.clock.Advance(time.Second)
	active, err = env.svc.Pass.ActivePass(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, active, "a pass is no longer active at its expiry instant")

	consumed, err := env.svc.Pass.Consume(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Nil(t, consumed)
}

func TestPassService_ConcurrentConsumeAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)
	env.givePass(t, alice.UserID)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pass, err := env.svc.Pass.Consume(ctx, alice.UserID)
			assert.NoError(t, err)
			if pass != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestPassService_InvalidUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Pass.Grant(ctx, 0, "telegram:1:1")
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
	_, err = env.svc.Pass.List(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)
}

func TestPaymentService_HandlePaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newProfile(t)

	ref, err := env.svc.Payment.NewReference(alice.UserID)
	require.NoError(t, err)

	first, err := env.svc.Payment.HandlePaid(ctx, service.PaymentEvent{ExternalReferenceID: ref, PayerIdentity: "tg"})
	require.NoError(t, err)
	assert.True(t, first.Granted)
	assert.Equal(t, alice.UserID, first.Pass.UserID)
	assert.Equal(t, env.clock.Now().Add(env.cfg.PassValidity), first.Pass.ExpiresAt)

	replay, err := env.svc.Payment.HandlePaid(ctx, service.PaymentEvent{ExternalReferenceID: ref})
	require.NoError(t, err)
	assert.False(t, replay.Granted)
	assert.Equal(t, first.Pass.ID, replay.Pass.ID)

	assert.Len(t, env.store.Passes(alice.UserID), 1)
	require.Len(t, env.notifier.For(alice.UserID), 1)
	assert.Contains(t, env.notifier.For(alice.UserID)[0], "Payment received")
}

func TestPaymentService_HandlePaid_InvalidReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
	}{
		{name: "empty", ref: ""},
		{name: "two parts", ref: "telegram:42"},
		{name: "four parts", ref: "telegram:42:1:2"},
		{name: "unknown namespace", ref: "stripe:42:1"},
		{name: "non numeric user", ref: "telegram:bob:1"},
		{name: "zero user", ref: "telegram:0:1"},
		{name: "bad timestamp", ref: "telegram:42:soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Payment.HandlePaid(ctx, service.PaymentEvent{ExternalReferenceID: tt.ref})
			assert.ErrorIs(t, err, domain.ErrInvalidReference)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestPaymentService_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.Err = domain.ErrStoreUnavailable

	_, err := env.svc.Payment.HandlePaid(ctx, service.PaymentEvent{ExternalReferenceID: "telegram:42:1"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestPaymentService_GrantUnlocksPendingMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.newProfile(t)
	bob := env.newProfile(t)
	_, err := env.svc.Match.Like(ctx, alice.UserID, bob.UserID)
	require.NoError(t, err)
	pending, err := env.svc.Match.Like(ctx, bob.UserID, alice.UserID)
	require.NoError(t, err)
	require.Equal(t, domain.MatchStatePassPending, pending.State)

	ref, err := env.svc.Payment.NewReference(bob.UserID)
	require.NoError(t, err)
	_, err = env.svc.Payment.HandlePaid(ctx, service.PaymentEvent{ExternalReferenceID: ref})
	require.NoError(t, err)

	negotiation, err := env.svc.Match.StartSession(ctx, alice.UserID, pending.Match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStateSessionActive, negotiation.State)
	assert.Equal(t, bob.UserID, negotiation.PaidBy)
	testutil.AssertPassConsumed(t, env.store.Passes(bob.UserID)[0])
}
