package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/api"
)

const sessionCookie = "bb_session-id"

type userIDKey struct{}

// Claims are the JWT claims issued by the auth backend. The subject is
// the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// ParseToken validates an HMAC-signed bearer token.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GetBearerToken extracts the Bearer token from the Authorization header.
func GetBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// AuthMiddleware resolves the caller's identity. A valid bearer token
// identifies a signed-in user and travels onward to the cart API; an
// invalid one is rejected. Without a token the caller is a guest, keyed
// by a session cookie minted on first contact.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := GetBearerToken(r); token != "" {
				claims, err := ParseToken(secret, token)
				if err != nil {
					respondError(w, http.StatusUnauthorized, "invalid or expired token", nil)
					return
				}
				ctx = context.WithValue(ctx, userIDKey{}, claims.Subject)
				ctx = api.WithToken(ctx, token)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionID := ""
			if c, err := r.Cookie(sessionCookie); err == nil {
				sessionID = c.Value
			}
			if sessionID == "" {
				sessionID = "guest-" + uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   60 * 60 * 48,
					HttpOnly: true,
				})
			}
			ctx = context.WithValue(ctx, userIDKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok {
		return id
	}
	return ""
}
