package middleware

import (
	"net/http"
	"strings"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKey constants for gin.Context values set by middleware.
const (
	CtxPrincipal = "principal"
	CtxAdminID   = "adminID"
	CtxRole      = "role"
)

// ──────────────────────────────────────────────────────────────────────────────
// PrincipalMiddleware — bettor identity
// ──────────────────────────────────────────────────────────────────────────────

// principalHeader is the header a caller presents their identity in. There
// is no login step for bettors: the engine trusts whatever principal the
// caller names, exactly as the original canister trusted its inter-canister
// caller identity.
const principalHeader = "X-Principal"

// PrincipalMiddleware extracts the caller's Principal from principalHeader.
// A missing header is treated as the anonymous principal rather than
// rejected outright — anonymous callers are a normal, named case the engine
// itself handles (ErrUserNotLoggedIn on a bet attempt, not a 401 here).
func PrincipalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(principalHeader)
		if raw == "" {
			c.Set(CtxPrincipal, domain.AnonymousPrincipal)
			c.Next()
			return
		}

		principal, err := domain.ParsePrincipalText(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "invalid " + principalHeader + " header",
			})
			return
		}
		c.Set(CtxPrincipal, principal)
		c.Next()
	}
}

// GetPrincipal retrieves the caller's Principal from the gin context.
// Returns the anonymous sentinel if PrincipalMiddleware was not applied.
func GetPrincipal(c *gin.Context) domain.Principal {
	v, exists := c.Get(CtxPrincipal)
	if !exists {
		return domain.AnonymousPrincipal
	}
	p, ok := v.(domain.Principal)
	if !ok {
		return domain.AnonymousPrincipal
	}
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// AdminJWTMiddleware — back-office staff identity
// ──────────────────────────────────────────────────────────────────────────────

// AdminJWTMiddleware validates the signature, expiry and type of the Bearer
// access token in the Authorization header. It does not look the account up
// in the back-office staff table, so a token stays usable until it expires
// even if its account is suspended. Bettors never hit this middleware —
// only /backoffice routes do.
func AdminJWTMiddleware(authSvc *service.AdminAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrUnauthorized.Error(),
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims, err := authSvc.ParseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrTokenInvalid.Error(),
			})
			return
		}
		if claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token type must be access",
			})
			return
		}

		adminID, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrTokenInvalid.Error(),
			})
			return
		}

		c.Set(CtxAdminID, adminID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// AdminRoleMiddleware ensures the authenticated admin has one of the
// allowed roles. Must be placed after AdminJWTMiddleware in the chain.
func AdminRoleMiddleware(roles ...domain.AdminRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		role, _ := c.Get(CtxRole)
		roleStr, _ := role.(string)
		if !allowed[roleStr] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": domain.ErrForbidden.Error(),
			})
			return
		}
		c.Next()
	}
}

// GetAdminID retrieves the authenticated admin's UUID from the gin context.
// Returns uuid.Nil if the middleware was not applied or the value is missing.
func GetAdminID(c *gin.Context) uuid.UUID {
	v, exists := c.Get(CtxAdminID)
	if !exists {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// GetRole retrieves the authenticated admin's role string from the gin context.
func GetRole(c *gin.Context) string {
	v, _ := c.Get(CtxRole)
	r, _ := v.(string)
	return r
}
