// Package auth verifies identity tokens issued by the external identity provider.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingSubject   = errors.New("missing subject in claims")
)

// Claims are the identity provider claims the storefront relies on
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTService verifies HS256 identity tokens and maps them to principals
type JWTService struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	admins   config.AuthConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.AuthConfig) *JWTService {
	return &JWTService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		admins:   cfg,
	}
}

// Verify validates a bearer token and returns the caller
func (s *JWTService) Verify(tokenString string) (*identity.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	return &identity.Principal{
		UserID: claims.Subject,
		Email:  email,
		Admin:  s.admins.IsAdminEmail(email),
	}, nil
}

// ValidateToken validates a token and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// IssueToken signs a token the way the identity provider does.
// Used by local tooling and tests.
func (s *JWTService) IssueToken(subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
