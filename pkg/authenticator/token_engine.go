package authenticator

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenEngine signs an object into a token and reads it back. Parse checks the
// signature and structure only; callers decide what an expired token means.
type TokenEngine interface {
	Generate(expiresAt time.Time, obj any) (string, error)
	Parse(token string, obj any) (time.Time, error)
}

type generateClaims struct {
	jwt.RegisteredClaims
	Object any `json:"obj,omitempty"`
}

type parseClaims struct {
	jwt.RegisteredClaims
	Object json.RawMessage `json:"obj,omitempty"`
}

type jwtTokenEngine struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenEngine(secret string) *jwtTokenEngine {
	return &jwtTokenEngine{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (e *jwtTokenEngine) Generate(expiresAt time.Time, obj any) (string, error) {
	claims := generateClaims{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.secret)
}

func (e *jwtTokenEngine) Parse(token string, obj any) (time.Time, error) {
	var claims parseClaims
	_, err := e.parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return e.secret, nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}

	if len(claims.Object) == 0 {
		return time.Time{}, fmt.Errorf("%w: missing obj claim", ErrInvalidToken)
	}

	if err := json.Unmarshal(claims.Object, obj); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims.ExpiresAt.Time, nil
}
