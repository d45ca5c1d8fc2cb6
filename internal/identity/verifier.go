package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer credential cannot be verified.
var ErrInvalidToken = errors.New("invalid bearer token")

// Verifier resolves a bearer credential to an application user id. The
// hosted auth platform is consumed through this interface only; handlers
// never see token internals.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID string, err error)
}

// jwtVerifier validates HS256 session tokens issued by the auth platform
// and extracts the user id from the subject claim.
type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for HS256-signed session tokens.
func NewJWTVerifier(secret string) Verifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", errors.Join(ErrInvalidToken, err))
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims: %w", ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject: %w", ErrInvalidToken)
	}

	return sub, nil
}
