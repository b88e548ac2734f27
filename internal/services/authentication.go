package services

import (
	"errors"
	"time"

	"lamah/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token claims")

type CustomClaims struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret string
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("empty jwt secret")
	}
	return &Authentication{secret}, nil
}

// CreateToken signs a token for caller. A zero ttl issues a token that does
// not expire.
func (authentication *Authentication) CreateToken(caller *models.Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		ID:   caller.ID,
		Role: caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  caller.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(authentication.secret))
}

func (authentication *Authentication) Validate(token string) (*models.Caller, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return []byte(authentication.secret), nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	switch claims.Role {
	case models.RolePlayer, models.RoleEditor, models.RoleAdmin:
	default:
		return nil, ErrInvalidToken
	}

	return &models.Caller{ID: claims.ID, Role: claims.Role}, nil
}
