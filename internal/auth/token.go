package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/accountsvc/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by Parse for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account identity alongside the registered JWT claims.
type Claims struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Role types.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 signed, stateless tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager constructs a JWTManager. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs the payload with an expiry of now+ttl.
func (m *JWTManager) Issue(payload types.TokenPayload) (string, error) {
	now := m.now()
	claims := Claims{
		ID:   payload.ID,
		Name: payload.Name,
		Role: payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   payload.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns the payload of a valid token. Malformed, expired or
// tampered tokens report false.
func (m *JWTManager) Verify(tokenString string) (types.TokenPayload, bool) {
	payload, err := m.Parse(tokenString)
	if err != nil {
		return types.TokenPayload{}, false
	}
	return payload, true
}

// Parse is Verify with the failure reason preserved.
func (m *JWTManager) Parse(tokenString string) (types.TokenPayload, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return types.TokenPayload{}, ErrInvalidToken
	}

	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return types.TokenPayload{}, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return types.TokenPayload{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.ID) == "" {
		return types.TokenPayload{}, errors.Join(ErrInvalidToken, errors.New("missing id"))
	}

	return types.TokenPayload{
		ID:   claims.ID,
		Name: claims.Name,
		Role: claims.Role,
	}, nil
}
