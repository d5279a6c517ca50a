package stakingd

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"stakeledger/observability/logging"
)

// AdminScope must appear in the scope claim of admin tokens.
const AdminScope = "ledger:admin"

// AdminAuthenticator validates HMAC-signed bearer tokens on admin routes.
type AdminAuthenticator struct {
	secret   []byte
	issuer   string
	audience string
	skew     time.Duration
	logger   *slog.Logger
}

// NewAdminAuthenticator builds an authenticator from cfg.
func NewAdminAuthenticator(cfg AdminConfig, logger *slog.Logger) (*AdminAuthenticator, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		return nil, errors.New("admin jwt secret required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	skew := cfg.ClockSkew.Duration
	if skew <= 0 {
		skew = 2 * time.Minute
	}
	return &AdminAuthenticator{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		skew:     skew,
		logger:   logger.With("component", "admin-auth"),
	}, nil
}

// Middleware rejects requests without a valid admin token.
func (a *AdminAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.parse(token)
		if err != nil {
			a.logger.Warn("admin token rejected", "error", err.Error(), logging.MaskField("token", token))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if !hasScope(claims, AdminScope) {
			writeError(w, http.StatusForbidden, "insufficient scope")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuthenticator) parse(raw string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(a.skew),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

// SignAdminToken issues an admin token valid for ttl.
func SignAdminToken(cfg AdminConfig, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"scope": AdminScope,
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	if cfg.Audience != "" {
		claims["aud"] = cfg.Audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.TrimSpace(cfg.JWTSecret)))
}

func hasScope(claims jwt.MapClaims, required string) bool {
	switch scopes := claims["scope"].(type) {
	case string:
		for _, scope := range strings.Fields(scopes) {
			if scope == required {
				return true
			}
		}
	case []interface{}:
		for _, scope := range scopes {
			if s, ok := scope.(string); ok && s == required {
				return true
			}
		}
	}
	return false
}

func extractBearer(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
