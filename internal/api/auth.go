package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trailhead/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	errMissingToken     = errors.New("missing bearer token")
	errInvalidToken     = errors.New("invalid token")
	errPermissionDenied = errors.New("permission denied")
)

// Claims is the token payload we accept. Tokens are issued by the identity
// provider; only the signature, expiry and role are checked here.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator guards write routes with an HS256 bearer token.
type Authenticator struct {
	enabled bool
	secret  []byte
	role    string
}

func NewAuthenticator(cfg config.APIAuthConfig) *Authenticator {
	return &Authenticator{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.JWTSecret),
		role:    cfg.AdminRole,
	}
}

// Require wraps next so that it runs only for admin tokens.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled {
			next(w, r)
			return
		}

		claims, err := a.parse(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.Role != a.role {
			writeError(w, http.StatusForbidden, errPermissionDenied.Error())
			return
		}

		zerolog.Ctx(r.Context()).Debug().Str("subject", claims.Subject).Msg("admin request")
		next(w, r)
	}
}

func (a *Authenticator) parse(header string) (*Claims, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// SignToken issues an HS256 token carrying role. Used by the admin CLI flag
// and tests.
func SignToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
