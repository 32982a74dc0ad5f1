package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncSlackCall(t *testing.T) {
	before := testutil.ToFloat64(slackCalls.WithLabelValues("chat.postMessage", OutcomeOK))

	IncSlackCall("chat.postMessage", OutcomeOK)
	IncSlackCall("chat.postMessage", OutcomeOK)

	after := testutil.ToFloat64(slackCalls.WithLabelValues("chat.postMessage", OutcomeOK))
	assert.InDelta(t, 2, after-before, 0.0001)
}

func TestHandler_ExposesCounters(t *testing.T) {
	ObserveHTTP(http.MethodGet, http.StatusOK, 3*time.Millisecond)
	IncSlackCall("conversations.list", OutcomeRemoteError)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "slackpanel_http_requests_total")
	assert.Contains(t, body, `slackpanel_slack_calls_total{method="conversations.list",outcome="remote_error"}`)
}
