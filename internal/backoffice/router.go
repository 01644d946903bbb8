package backoffice

import (
	"net/http"
	"strings"

	"github.com/evetabi/hotornot/internal/api/middleware"
	"github.com/evetabi/hotornot/internal/backoffice/handler"
	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/evetabi/hotornot/internal/ws"
	"github.com/gin-gonic/gin"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc       *service.AdminAuthService
	AdminRepo     *repository.AdminRepository
	PostRepo      *repository.PostRepository
	LedgerRepo    *repository.LedgerRepository
	TabulationSvc *service.TabulationService
	Hub           *ws.Hub
	Cfg           *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine on its own port,
// separate from the bettor-facing API.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	dashH := handler.NewDashboardHandler(deps.PostRepo, deps.LedgerRepo, deps.Hub, deps.Cfg)
	postH := handler.NewPostAdminHandler(deps.PostRepo, deps.TabulationSvc)
	accountH := handler.NewAdminAccountHandler(deps.AdminRepo, deps.AuthSvc)
	financeH := handler.NewFinanceHandler(deps.LedgerRepo)

	jwtMW := middleware.AdminJWTMiddleware(deps.AuthSvc)
	adminOnly := middleware.AdminRoleMiddleware(domain.RoleAdmin)
	opsOrAdmin := middleware.AdminRoleMiddleware(domain.RoleAdmin, domain.RoleOps)
	financeOrAdmin := middleware.AdminRoleMiddleware(domain.RoleAdmin, domain.RoleFinance)

	admin := r.Group("/admin")
	admin.Use(jwtMW)
	{
		admin.GET("/dashboard", dashH.Dashboard)

		posts := admin.Group("/posts")
		{
			posts.GET("", postH.List)
			posts.GET("/:id", postH.Detail)
			posts.POST("/:id/slots/:slot/tabulate", opsOrAdmin, postH.Tabulate)
		}

		accounts := admin.Group("/accounts")
		accounts.Use(adminOnly)
		{
			accounts.GET("", accountH.List)
			accounts.POST("", accountH.Create)
			accounts.GET("/:id", accountH.Detail)
			accounts.POST("/:id/role", accountH.SetRole)
			accounts.POST("/:id/suspend", accountH.Suspend)
			accounts.POST("/:id/activate", accountH.Activate)
		}

		finance := admin.Group("/finance")
		finance.Use(financeOrAdmin)
		{
			finance.GET("/commission", financeH.CommissionReport)
			finance.GET("/ledger/:principal", financeH.Ledger)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}
