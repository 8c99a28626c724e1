package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/noticeboard-api/internal/models"
	appErrors "github.com/noah-isme/noticeboard-api/pkg/errors"
)

// TokenService verifies bearer tokens issued by the identity provider.
type TokenService struct {
	secret []byte
}

// NewTokenService constructs the verifier for HS256 tokens signed with secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// ValidateToken parses and verifies a token and returns its claims. Tokens
// without a username or subject are rejected.
func (s *TokenService) ValidateToken(tokenString string) (*models.IdentityClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing token")
	}
	claims := &models.IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.CloneWrap(appErrors.ErrUnauthorized, err, "token expired")
		}
		return nil, appErrors.CloneWrap(appErrors.ErrUnauthorized, err, "invalid token")
	}
	if !token.Valid || claims.Name() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}
