package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dom/donutdot/internal/testutil"
	"github.com/dom/donutdot/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocket_ReceivesMatchNotification(t *testing.T) {
	ts := testutil.NewTestServer(t)
	repo := ts.Store.Repositories().Profile
	alice := testutil.NewProfileBuilder().Build(t, repo)
	bob := testutil.NewProfileBuilder().Build(t, repo)

	client := testutil.NewWSClient(t, ts.WebSocketURL(ts.TokenFor(t, alice.UserID)))
	require.Eventually(t, func() bool { return ts.Hub.Connected(alice.UserID) == 1 }, time.Second, 10*time.Millisecond)

	client.Send(websocket.MessageTypePing)
	client.ExpectMessage(websocket.MessageTypePong, time.Second)

	_, err := ts.Services.Match.Like(t.Context(), alice.UserID, bob.UserID)
	require.NoError(t, err)
	_, err = ts.Services.Match.Like(t.Context(), bob.UserID, alice.UserID)
	require.NoError(t, err)

	text := client.ExpectNotification(2 * time.Second)
	assert.Contains(t, text, bob.Name)
}

func TestWebSocket_OnlyParticipantsAreNotified(t *testing.T) {
	ts := testutil.NewTestServer(t)
	repo := ts.Store.Repositories().Profile
	alice := testutil.NewProfileBuilder().Build(t, repo)
	bob := testutil.NewProfileBuilder().Build(t, repo)
	carol := testutil.NewProfileBuilder().Build(t, repo)

	client := testutil.NewWSClient(t, ts.WebSocketURL(ts.TokenFor(t, carol.UserID)))
	require.Eventually(t, func() bool { return ts.Hub.Connected(carol.UserID) == 1 }, time.Second, 10*time.Millisecond)

	_, err := ts.Services.Match.Like(t.Context(), alice.UserID, bob.UserID)
	require.NoError(t, err)
	_, err = ts.Services.Match.Like(t.Context(), bob.UserID, alice.UserID)
	require.NoError(t, err)

	client.ExpectNoMessage(300 * time.Millisecond)
}

func TestWebSocket_UnknownMessageType(t *testing.T) {
	ts := testutil.NewTestServer(t)
	alice := testutil.NewProfileBuilder().Build(t, ts.Store.Repositories().Profile)

	client := testutil.NewWSClient(t, ts.WebSocketURL(ts.TokenFor(t, alice.UserID)))
	client.Send(websocket.MessageType("SUBSCRIBE"))

	payload := client.ExpectError(time.Second)
	assert.Equal(t, "UNKNOWN_TYPE", payload.Code)

	// The socket stays usable after an error frame.
	client.Send(websocket.MessageTypePing)
	client.ExpectMessage(websocket.MessageTypePong, time.Second)
}

func TestWebSocket_RejectsBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	for _, url := range []string{
		ts.APIURL("/ws"),
		ts.APIURL("/ws?token=garbage"),
	} {
		resp, err := http.Get(url)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(ts.Server.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
