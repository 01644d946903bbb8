package api

import (
	"net/http"

	"github.com/evetabi/hotornot/internal/api/handler"
	"github.com/evetabi/hotornot/internal/api/middleware"
	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/evetabi/hotornot/internal/ws"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	BetSvc   *service.BetService
	PostRepo *repository.PostRepository
	Hub      *ws.Hub
	Cfg      *config.Config
}

// SetupRouter creates and configures the bettor-facing Gin engine: every
// route here is reachable by an anonymous-or-principal-bearing caller, with
// no login step. Back-office routes live on their own engine in
// internal/backoffice.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(deps.Cfg))
	r.Use(middleware.PrincipalMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	postH := handler.NewPostHandler(deps.PostRepo)
	betH := handler.NewBetHandler(deps.BetSvc)

	betRL := middleware.RateLimitMiddleware(30) // 30 req/s per IP for bet placement

	apiGroup := r.Group("/api")
	{
		posts := apiGroup.Group("/posts")
		{
			posts.POST("", postH.CreatePost)
			posts.GET("/:id", postH.GetPost)
			posts.GET("/:id/betting-status", betH.GetStatus)

			bets := posts.Group("/:id/bets")
			bets.Use(betRL)
			{
				bets.POST("", betH.PlaceBet)
			}
		}
	}

	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In DEBUG mode all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			allowed := map[string]bool{
				"https://evetabi.com":     true,
				"https://www.evetabi.com": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "X-Principal, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
