package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/infrastructure/auth"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTPrincipalKey = "jwt_principal"
	JWTUserIDKey    = "jwt_user_id"
	JWTEmailKey     = "jwt_email"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// TokenVerifier turns a bearer token into the calling principal
type TokenVerifier interface {
	Verify(token string) (*identity.Principal, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// JWTAuthMiddleware rejects requests without a valid identity token
func JWTAuthMiddleware(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{Verifier: verifier, Logger: log})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Empty token")
			return
		}

		principal, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token verification failed")
			return
		}

		c.Set(JWTPrincipalKey, *principal)
		c.Set(JWTUserIDKey, principal.UserID)
		c.Set(JWTEmailKey, principal.Email)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), principal.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAdmin lets through only principals whose email is a configured admin.
// It must run after JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if !principal.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthenticated, "Authentication required", GetRequestID(c)))
			return
		}
		if !principal.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Administrator access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	errorMessage := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		errorMessage = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		errorMessage = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingSubject):
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthenticated, errorMessage, GetRequestID(c)))
}

// GetPrincipal returns the authenticated caller, or the zero Principal
func GetPrincipal(c *gin.Context) identity.Principal {
	if v, exists := c.Get(JWTPrincipalKey); exists {
		if p, ok := v.(identity.Principal); ok {
			return p
		}
	}
	return identity.Principal{}
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
