package daemon

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const tokenIssuer = "jotter"

var ErrTokenRevoked = errors.New("token revoked")

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenIssuer signs and verifies session tokens. Signed-out tokens stay in
// a revocation cache until they would have expired anyway.
type TokenIssuer struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	now     func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{
		secret:  secret,
		ttl:     ttl,
		revoked: cache.New(ttl, 10*time.Minute),
		now:     time.Now,
	}
}

func (t *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.UTC(), nil
}

func (t *TokenIssuer) Verify(raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || strings.TrimSpace(claims.UserID) == "" {
		return nil, errors.New("invalid token")
	}
	if _, revoked := t.revoked.Get(claims.ID); revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (t *TokenIssuer) Revoke(claims *sessionClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	ttl := t.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(t.now())
	}
	if ttl <= 0 {
		return
	}
	t.revoked.Set(claims.ID, struct{}{}, ttl)
}

type userContextKey struct{}
type claimsContextKey struct{}

// RequireUser rejects requests without a valid bearer token and stores the
// caller's user id on the request context.
func RequireUser(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeServiceError(w, unauthorizedError("unauthorized", nil))
				return
			}
			claims, err := issuer.Verify(raw)
			if err != nil {
				writeServiceError(w, unauthorizedError("unauthorized", err))
				return
			}
			if scope := requestScopeFrom(r.Context()); scope != nil {
				scope.userID = claims.UserID
			}
			ctx := context.WithValue(r.Context(), userContextKey{}, claims.UserID)
			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userContextKey{}).(string)
	return userID, ok && userID != ""
}

func claimsFromContext(ctx context.Context) *sessionClaims {
	claims, _ := ctx.Value(claimsContextKey{}).(*sessionClaims)
	return claims
}
