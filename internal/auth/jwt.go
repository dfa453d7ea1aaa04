package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// UserClaims is what the external auth service puts into access tokens. The
// hub only validates; it never issues tokens outside of dev tooling.
type UserClaims struct {
	UserID    string `json:"id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// ParseUserToken validates an HS256 access token and extracts the user id.
func ParseUserToken(tokenStr, secret string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return uuid.Nil, jwt.ErrTokenExpired
	}
	if claims.TokenType != "" && claims.TokenType != "access" {
		return uuid.Nil, errors.New("token is not an access token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// GenerateUserToken mints an access token. Used by hubctl and tests; the
// production issuer lives in the auth service.
func GenerateUserToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	claims := &UserClaims{
		UserID:    userID.String(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
