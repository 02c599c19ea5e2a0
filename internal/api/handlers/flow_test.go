package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/api/handlers"
	"github.com/dom/donutdot/internal/api/middleware"
	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
	"github.com/dom/donutdot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnboardingAndBrowseFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	const userID int64 = 9001
	token := ts.TokenFor(t, userID)

	post := func(path string, body interface{}) *http.Response {
		return testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL(path), body, token))
	}

	resp := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/profile"), nil, token))
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)

	resp = post("/onboarding/start", map[string]string{"username": "nine"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	for _, answer := range []string{"Nina", "29"} {
		resp = post("/onboarding/reply", map[string]string{"text": answer})
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	}

	resp = post("/onboarding/reply", map[string]string{"text": "Vienna"})
	var reply domain.OnboardingReply
	testutil.AssertJSONResponse(t, resp, &reply)
	require.True(t, reply.Complete)
	assert.Equal(t, "Vienna", reply.Profile.Location)

	other := testutil.NewProfileBuilder().CreatedAt(ts.Clock.Now()).Build(t, ts.Store.Repositories().Profile)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/candidates/next"), nil, token))
	var next handlers.CandidateResponse
	testutil.AssertJSONResponse(t, resp, &next)
	require.NotNil(t, next.Candidate)
	assert.Equal(t, other.UserID, next.Candidate.UserID)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/candidates/next"), nil, token))
	testutil.AssertJSONResponse(t, resp, &next)
	assert.True(t, next.Exhausted)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/candidates/next?reset=true"), nil, token))
	testutil.AssertJSONResponse(t, resp, &next)
	require.NotNil(t, next.Candidate)

	resp = post("/onboarding/edit", map[string]string{"field": "name"})
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
}

func TestMatchFlow_PaymentThenSession(t *testing.T) {
	ts := testutil.NewTestServer(t)
	repo := ts.Store.Repositories().Profile

	alice := testutil.NewProfileBuilder().Build(t, repo)
	bob := testutil.NewProfileBuilder().Build(t, repo)
	aliceToken := ts.TokenFor(t, alice.UserID)
	bobToken := ts.TokenFor(t, bob.UserID)

	resp := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/likes"),
		map[string]int64{"targetId": bob.UserID}, aliceToken))
	var like service.LikeResult
	testutil.AssertJSONResponse(t, resp, &like)
	assert.False(t, like.Matched)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/likes"),
		map[string]int64{"targetId": alice.UserID}, bobToken))
	testutil.AssertJSONResponse(t, resp, &like)
	require.True(t, like.Matched)
	assert.Equal(t, domain.MatchStatePassPending, like.State)
	matchID := like.Match.ID

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/passes/reference"), nil, aliceToken))
	var ref handlers.ReferenceResponse
	testutil.AssertJSONResponse(t, resp, &ref)
	require.NotEmpty(t, ref.ReferenceID)

	payment := func(secret string) *http.Response {
		req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/payments/events"),
			service.PaymentEvent{ExternalReferenceID: ref.ReferenceID, PayerIdentity: "alice"}, "")
		req.Header.Set(middleware.HeaderPaymentSecret, secret)
		return testutil.Do(t, req)
	}
	testutil.AssertStatusCode(t, payment("wrong"), http.StatusForbidden)
	testutil.AssertStatusCode(t, payment(ts.Config.PaymentSecret), http.StatusCreated)
	testutil.AssertStatusCode(t, payment(ts.Config.PaymentSecret), http.StatusOK)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/passes"), nil, aliceToken))
	var passes handlers.PassListResponse
	testutil.AssertJSONResponse(t, resp, &passes)
	require.Len(t, passes.Passes, 1)
	require.NotNil(t, passes.Active)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost,
		ts.APIURL("/matches/"+matchID.String()+"/session"), nil, aliceToken))
	var negotiation service.Negotiation
	testutil.AssertJSONResponse(t, resp, &negotiation)
	assert.Equal(t, domain.MatchStateSessionActive, negotiation.State)
	assert.Equal(t, alice.UserID, negotiation.PaidBy)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/sessions/active"), nil, bobToken))
	var active handlers.ActiveSessionResponse
	testutil.AssertJSONResponse(t, resp, &active)
	require.NotNil(t, active.Session)
	assert.Equal(t, int(ts.Config.SessionDuration/time.Second), active.RemainingSeconds)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost,
		ts.APIURL("/matches/"+matchID.String()+"/session"), nil, aliceToken))
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)

	ts.Clock.Advance(ts.Config.SessionDuration)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/sessions/active"), nil, bobToken))
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)

	resp = testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/matches"), nil, bobToken))
	var views []service.MatchView
	testutil.AssertJSONResponse(t, resp, &views)
	require.Len(t, views, 1)
	assert.Equal(t, domain.MatchStateSessionExpired, views[0].State)

	cron := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/cron/expire-sessions"), nil, "")
	cron.Header.Set(middleware.HeaderCronSecret, ts.Config.CronSecret)
	var sweep handlers.SweepResponse
	testutil.AssertJSONResponse(t, testutil.Do(t, cron), &sweep)
	assert.Equal(t, 1, sweep.Notified)
}

func TestMatchHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	alice := testutil.NewProfileBuilder().Build(t, ts.Store.Repositories().Profile)
	token := ts.TokenFor(t, alice.UserID)

	tests := []struct {
		name            string
		method          string
		path            string
		body            interface{}
		expectedStatus  int
		expectedMessage string
	}{
		{name: "self like", method: http.MethodPost, path: "/likes", body: map[string]int64{"targetId": alice.UserID}, expectedStatus: http.StatusBadRequest, expectedMessage: "cannot like yourself"},
		{name: "unknown target", method: http.MethodPost, path: "/likes", body: map[string]int64{"targetId": 123}, expectedStatus: http.StatusNotFound, expectedMessage: "not found: profile"},
		{name: "missing target", method: http.MethodPost, path: "/likes", body: map[string]int64{}, expectedStatus: http.StatusBadRequest, expectedMessage: "Validation failed"},
		{name: "bad match id", method: http.MethodPost, path: "/matches/not-a-uuid/session", expectedStatus: http.StatusBadRequest, expectedMessage: "Invalid ID"},
		{name: "unknown match", method: http.MethodPost, path: "/matches/00000000-0000-0000-0000-000000000001/session", expectedStatus: http.StatusNotFound, expectedMessage: "not found: match"},
		{name: "report self", method: http.MethodPost, path: "/reports", body: map[string]interface{}{"reportedId": alice.UserID, "reason": "x"}, expectedStatus: http.StatusBadRequest, expectedMessage: "cannot report yourself"},
		{name: "invalid preferences", method: http.MethodPut, path: "/profile/preferences", body: map[string]int{"minAge": 50, "maxAge": 20}, expectedStatus: http.StatusBadRequest, expectedMessage: "min age must not exceed max age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, tt.method, ts.APIURL(tt.path), tt.body, token))
			testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMessage)
		})
	}

	t.Run("skip", func(t *testing.T) {
		resp := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/skips"), map[string]int64{"targetId": 123}, token))
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)
	})
}

func TestRateLimit(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Cache.Limit = true
	repo := ts.Store.Repositories().Profile
	alice := testutil.NewProfileBuilder().Build(t, repo)
	bob := testutil.NewProfileBuilder().Build(t, repo)
	token := ts.TokenFor(t, alice.UserID)

	body := map[string]int64{"targetId": bob.UserID}
	first := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/likes"), body, token))
	testutil.AssertStatusCode(t, first, http.StatusOK)

	second := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/likes"), body, token))
	testutil.AssertErrorResponse(t, second, http.StatusTooManyRequests, "Please wait a moment")

	// Reads are never throttled.
	read := testutil.Do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/profile"), nil, token))
	testutil.AssertStatusCode(t, read, http.StatusOK)
}
