package stakingd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func protected(t *testing.T, cfg AdminConfig) http.Handler {
	t.Helper()
	auth, err := NewAdminAuthenticator(cfg, discardLogger())
	require.NoError(t, err)
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func call(handler http.Handler, token string) int {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/pause/rewards", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func sign(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAdminAuthenticator(t *testing.T) {
	cfg := AdminConfig{JWTSecret: testSecret, Issuer: "stakingd", Audience: "ops"}
	handler := protected(t, cfg)

	valid, err := SignAdminToken(cfg, "operator", time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, call(handler, valid))

	require.Equal(t, http.StatusUnauthorized, call(handler, ""))

	expired := sign(t, testSecret, jwt.MapClaims{
		"iss": "stakingd", "aud": "ops", "scope": AdminScope,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, jwt.SigningMethodHS256)
	require.Equal(t, http.StatusUnauthorized, call(handler, expired))

	noExpiry := sign(t, testSecret, jwt.MapClaims{"iss": "stakingd", "aud": "ops", "scope": AdminScope}, jwt.SigningMethodHS256)
	require.Equal(t, http.StatusUnauthorized, call(handler, noExpiry))

	wrongIssuer := sign(t, testSecret, jwt.MapClaims{
		"iss": "other", "aud": "ops", "scope": AdminScope, "exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256)
	require.Equal(t, http.StatusUnauthorized, call(handler, wrongIssuer))

	wrongSecret := sign(t, "another-secret-another-secret-xx", jwt.MapClaims{
		"iss": "stakingd", "aud": "ops", "scope": AdminScope, "exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256)
	require.Equal(t, http.StatusUnauthorized, call(handler, wrongSecret))

	readOnly := sign(t, testSecret, jwt.MapClaims{
		"iss": "stakingd", "aud": "ops", "scope": "ledger:read", "exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256)
	require.Equal(t, http.StatusForbidden, call(handler, readOnly))

	listScope := sign(t, testSecret, jwt.MapClaims{
		"iss": "stakingd", "aud": "ops", "scope": []string{"ledger:read", AdminScope}, "exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS512)
	require.Equal(t, http.StatusNoContent, call(handler, listScope))
}

func TestAdminAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewAdminAuthenticator(AdminConfig{}, nil)
	require.Error(t, err)
}
