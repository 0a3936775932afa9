// Package token issues and verifies the signed identity tokens carried by the
// session cookie. Validity is established by signature and expiry alone; no
// store lookup is involved.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims embeds the registered claim set plus the authenticated user id.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies identity tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a token manager. The ttl bounds every issued token.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL reports the validity window applied to issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token for the given user id, expiring after the
// configured ttl.
func (m *Manager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
// Expired, tampered and malformed tokens all fail the same way; callers must
// not distinguish the cases to the client.
func (m *Manager) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", jwt.ErrTokenUnverifiable
	}
	return claims.UserID, nil
}
