package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/content-service/internal/auth"
	"github.com/duynhne/content-service/internal/core/domain"
	"github.com/duynhne/content-service/internal/logger"
)

// ContextClaimsKey is the gin context key holding the caller's *auth.Claims.
const ContextClaimsKey = "claims"

type claimsCtxKey struct{}

// TokenVerifier decodes a session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator resolves the caller from the session cookie.
type Authenticator struct {
	tokens     TokenVerifier
	cookies    *auth.CookieManager
	cookieName string
}

// NewAuthenticator returns an Authenticator reading cookieName.
func NewAuthenticator(tokens TokenVerifier, cookies *auth.CookieManager, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, cookies: cookies, cookieName: cookieName}
}

// Identify attaches the caller's claims when a valid cookie is present and
// never rejects the request.
func (a *Authenticator) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := a.resolve(c); claims != nil {
			attachClaims(c, claims)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid session with 401.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); ok {
			c.Next()
			return
		}

		token, ok := a.cookies.Get(c, a.cookieName)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		claims, err := a.tokens.Verify(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug().Err(err).Msg("Rejected session token")
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		attachClaims(c, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles with 403. It must
// run after RequireAuth; a request with no identity gets 401.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			logger.FromContext(c.Request.Context()).Warn().
				Int64("user_id", claims.ID).
				Str("role", string(claims.Role)).
				Str("path", c.Request.URL.Path).
				Msg("Insufficient role")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims attached by Identify or RequireAuth.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// ClaimsFromContext returns the claims stored in a request context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*auth.Claims)
	return claims, ok
}

func (a *Authenticator) resolve(c *gin.Context) *auth.Claims {
	token, ok := a.cookies.Get(c, a.cookieName)
	if !ok {
		return nil
	}
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}

func attachClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextClaimsKey, claims)

	l := logger.FromContext(c.Request.Context()).With().Int64("user_id", claims.ID).Logger()
	ctx := context.WithValue(c.Request.Context(), claimsCtxKey{}, claims)
	c.Request = c.Request.WithContext(l.WithContext(ctx))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": message,
	})
}
