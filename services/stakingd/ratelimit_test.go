package stakingd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterPerClient(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 2})
	now := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return now }
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, hit("10.0.0.1"))
	require.Equal(t, http.StatusOK, hit("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	require.Equal(t, http.StatusOK, hit("10.0.0.2"))

	now = now.Add(time.Second)
	require.Equal(t, http.StatusOK, hit("10.0.0.1"))

	now = now.Add(10 * time.Minute)
	limiter.allow("10.0.0.9")
	require.NotContains(t, limiter.visitors, "10.0.0.1")
}
