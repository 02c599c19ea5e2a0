package service_test

import (
	"testing"
	"time"

	"github.com/dom/donutdot/internal/config"
	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/testutil"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *testutil.MemoryStore
	cache    *testutil.MemoryCache
	clock    *testutil.FakeClock
	notifier *testutil.RecordingNotifier
	cfg      *config.Config
	svc      *service.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    testutil.NewMemoryStore(),
		cache:    testutil.NewMemoryCache(),
		clock:    testutil.NewFakeClock(epoch),
		notifier: testutil.NewRecordingNotifier(),
		cfg:      testutil.TestConfig(),
	}
	env.svc = service.NewServices(service.Deps{
		Repos:      env.store.Repositories(),
		Onboarding: env.cache,
		Browse:     env.cache,
		Verify:     env.cache,
		Notifier:   env.notifier,
		Config:     env.cfg,
		Now:        env.clock.Now,
	})
	return env
}

// newProfile stores a complete profile created at the current fake time.
func (e *testEnv) newProfile(t *testing.T) *domain.Profile {
	t.Helper()
	return testutil.NewProfileBuilder().CreatedAt(e.clock.Now()).Build(t, e.store.Repositories().Profile)
}

func (e *testEnv) givePass(t *testing.T, userID int64) {
	t.Helper()
	testutil.GivePass(t, e.store.Repositories().Pass, userID, e.clock.Now(), e.cfg.PassValidity)
}

func serviceProfileInput(userID int64, name string, age int, location string) service.ProfileInput {
	return service.ProfileInput{UserID: userID, Name: name, Age: age, Location: location}
}
