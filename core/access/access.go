/*Package access provides bearer-token based access control.

Tokens are HS256 signed Java-Web-Token (JWT), accepted as
"Authorization: Bearer" header. The subject claim carries the
authenticated user id.
*/
package access

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/policydesk/backoffice/core"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

const contextKeyIdentity contextKey = "_identity_"

// ContextWithIdentity returns a new context with the authenticated identity
func ContextWithIdentity(ctx context.Context, identity string) context.Context {
	if len(identity) > 0 {
		return context.WithValue(ctx, contextKeyIdentity, identity)
	}
	return ctx
}

// IdentityFromContext retrieves the authenticated identity from the context,
// or the empty string if there is none.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(contextKeyIdentity).(string)
	return identity
}

// NewToken issues a signed HS256 token for the given user id, valid for
// the given duration.
func NewToken(secret []byte, userID string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies the token signature and expiry and returns the
// user id from the subject claim. Verification failures come back as
// core.AuthError.
func ParseToken(secret []byte, tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.AuthError{Message: "unexpected signing method"}
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", core.AuthError{Message: "invalid token"}
	}
	if claims.Subject == "" {
		return "", core.AuthError{Message: "invalid token"}
	}
	return claims.Subject, nil
}

// TokenFromRequest extracts the bearer token from the Authorization
// header. It tolerates a missing "Bearer" prefix, some clients send the
// bare token.
func TokenFromRequest(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) == 0 || bearer == "null" {
		return ""
	}
	if len(bearer) >= 8 && strings.ToLower(bearer[:7]) == "bearer " {
		return bearer[7:]
	}
	return bearer
}
