package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"gorm.io/datatypes"
)

var nextUserID struct {
	sync.Mutex
	id int64
}

// NewUserID returns a fresh chat user id for a test.
func NewUserID() int64 {
	nextUserID.Lock()
	defer nextUserID.Unlock()
	nextUserID.id++
	return 100000 + nextUserID.id
}

// ProfileBuilder creates test profiles with a builder pattern
type ProfileBuilder struct {
	profile domain.Profile
}

// NewProfileBuilder creates a complete profile with default values
func NewProfileBuilder() *ProfileBuilder {
	id := NewUserID()
	now := time.Now().UTC()
	return &ProfileBuilder{profile: domain.Profile{
		UserID:    id,
		Username:  fmt.Sprintf("user_%d", id),
		Name:      fmt.Sprintf("Test User %d", id),
		Age:       25,
		Location:  "Berlin",
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func (b *ProfileBuilder) WithID(userID int64) *ProfileBuilder {
	b.profile.UserID = userID
	return b
}

func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.Name = name
	return b
}

func (b *ProfileBuilder) WithAge(age int) *ProfileBuilder {
	b.profile.Age = age
	return b
}

func (b *ProfileBuilder) WithLocation(location string) *ProfileBuilder {
	b.profile.Location = location
	return b
}

func (b *ProfileBuilder) WithGender(gender string) *ProfileBuilder {
	b.profile.Gender = gender
	return b
}

func (b *ProfileBuilder) Verified() *ProfileBuilder {
	now := time.Now().UTC()
	b.profile.Verified = true
	b.profile.VerifiedAt = &now
	return b
}

func (b *ProfileBuilder) Banned() *ProfileBuilder {
	b.profile.Banned = true
	return b
}

func (b *ProfileBuilder) CreatedAt(at time.Time) *ProfileBuilder {
	b.profile.CreatedAt = at
	b.profile.UpdatedAt = at
	return b
}

func (b *ProfileBuilder) WithPreferences(filters domain.Filters) *ProfileBuilder {
	b.profile.Preferences = datatypes.NewJSONType(filters)
	return b
}

// Build stores the profile through repo and returns it.
func (b *ProfileBuilder) Build(t *testing.T, repo repository.ProfileRepository) *domain.Profile {
	t.Helper()

	profile := b.profile
	if err := repo.Create(context.Background(), &profile); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return &profile
}

// GivePass stores an active pass for userID purchased at purchasedAt.
func GivePass(t *testing.T, repo repository.PassRepository, userID int64, purchasedAt time.Time, validity time.Duration) *domain.Pass {
	t.Helper()

	ref := domain.NewReference(domain.ReferencePurchase, userID, purchasedAt)
	pass := domain.NewPass(userID, ref, purchasedAt, validity)
	if err := repo.Create(context.Background(), pass); err != nil {
		t.Fatalf("failed to create pass: %v", err)
	}
	return pass
}

// FakeClock is a settable time source for services.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *FakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

// Notification is one message captured by RecordingNotifier.
type Notification struct {
	UserID  int64
	Message string
}

// RecordingNotifier captures every notification. Fail makes it return an
// error after recording.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	Fail error
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(ctx context.Context, userID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{UserID: userID, Message: message})
	return n.Fail
}

func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// For returns the messages sent to userID in order.
func (n *RecordingNotifier) For(userID int64) []string {
	var out []string
	for _, s := range n.Sent() {
		if s.UserID == userID {
			out = append(out, s.Message)
		}
	}
	return out
}

func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

// CreateAuthenticatedRequest creates an HTTP request with bearer auth
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// Do sends req with the default client and fails the test on transport errors.
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}
