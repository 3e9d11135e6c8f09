package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/bizdir/backend/internal/infrastructure/auth"
	"github.com/bizdir/backend/internal/infrastructure/logger"
	"github.com/bizdir/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = logger.GinUserIDKey
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// PublicRoute marks requests that may be anonymous. An empty Method matches
// every method. A token sent on a public route is still read so handlers
// can tell owners and admins apart.
type PublicRoute struct {
	Method string
	Prefix string
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; nil skips revocation checks
	TokenBlacklist auth.TokenBlacklist
	PublicRoutes   []PublicRoute
	Logger         *zap.Logger
}

// DefaultPublicRoutes are the anonymous endpoints of the directory API
func DefaultPublicRoutes() []PublicRoute {
	return []PublicRoute{
		{Prefix: "/health"},
		{Prefix: "/ready"},
		{Prefix: "/swagger"},
		{Method: http.MethodPost, Prefix: "/api/v1/auth/register"},
		{Method: http.MethodPost, Prefix: "/api/v1/auth/login"},
		{Method: http.MethodPost, Prefix: "/api/v1/auth/refresh"},
		{Method: http.MethodGet, Prefix: "/api/v1/listings"},
		{Method: http.MethodGet, Prefix: "/api/v1/plans"},
		{Method: http.MethodPost, Prefix: "/api/v1/analytics/events"},
		{Method: http.MethodPost, Prefix: "/api/v1/billing/webhook"},
	}
}

func (cfg JWTMiddlewareConfig) isPublic(r *http.Request) bool {
	return slices.ContainsFunc(cfg.PublicRoutes, func(p PublicRoute) bool {
		return (p.Method == "" || p.Method == r.Method) && strings.HasPrefix(r.URL.Path, p.Prefix)
	})
}

// JWTAuthMiddlewareWithConfig authenticates bearer tokens. Protected routes
// require a valid, unrevoked access token.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		public := cfg.isPublic(c.Request)

		tokenString, present := bearerToken(c)
		if !present {
			if public {
				c.Next()
				return
			}
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := authenticate(c, cfg, tokenString)
		if err != nil {
			if public {
				// anonymous access still works with a stale token
				c.Next()
				return
			}
			log.Warn("JWT authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path))
			code, message := authErrorCode(err)
			abortWithError(c, code, message)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		ctx := c.Request.Context()
		ctx, reqLogger := logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		if _, ok := c.Get(logger.GinLoggerKey); ok {
			c.Set(logger.GinLoggerKey, reqLogger)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authenticate(c *gin.Context, cfg JWTMiddlewareConfig, tokenString string) (*auth.Claims, error) {
	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if cfg.TokenBlacklist == nil {
		return claims, nil
	}

	ctx := c.Request.Context()
	// revocation lookups fail open
	if revoked, err := cfg.TokenBlacklist.IsRevoked(ctx, claims.ID); err != nil {
		logger.FromContext(ctx).Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
	} else if revoked {
		return nil, auth.ErrTokenBlacklisted
	}
	if revoked, err := cfg.TokenBlacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime()); err != nil {
		logger.FromContext(ctx).Error("Failed to check user revocation", zap.String("user_id", claims.UserID), zap.Error(err))
	} else if revoked {
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

func authErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

// RequireRole allows only callers whose token carries one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			abortWithError(c, dto.ErrCodeForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user, if any
func GetJWTUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetJWTRole returns the role carried by the token, or ""
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}
