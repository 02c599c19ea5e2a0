package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/donutdot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and message
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	// Error responses are plain text in this API
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertMatchState verifies the stored state of a match
func AssertMatchState(t *testing.T, match *domain.Match, expected domain.MatchState) {
	t.Helper()
	require.NotNil(t, match, "match is nil")
	assert.Equal(t, expected, match.State, "unexpected match state")
}

// AssertPassConsumed verifies a pass has been spent
func AssertPassConsumed(t *testing.T, pass *domain.Pass) {
	t.Helper()
	require.NotNil(t, pass, "pass is nil")
	assert.NotNil(t, pass.ConsumedAt, "pass %s should be consumed", pass.ID)
}

// AssertPassUnconsumed verifies a pass has not been spent
func AssertPassUnconsumed(t *testing.T, pass *domain.Pass) {
	t.Helper()
	require.NotNil(t, pass, "pass is nil")
	assert.Nil(t, pass.ConsumedAt, "pass %s should not be consumed", pass.ID)
}
