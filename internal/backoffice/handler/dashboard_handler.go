package handler

import (
	"net/http"
	"time"

	"github.com/evetabi/hotornot/internal/config"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/ws"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	postRepo   *repository.PostRepository
	ledgerRepo *repository.LedgerRepository
	hub        *ws.Hub
	cfg        *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	postRepo *repository.PostRepository,
	ledgerRepo *repository.LedgerRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{postRepo: postRepo, ledgerRepo: ledgerRepo, hub: hub, cfg: cfg}
}

// Dashboard godoc
// GET /admin/dashboard
//
// Aggregates the figures a back-office operator checks at a glance: how
// many posts exist, how much commission the platform has earned in the
// last 24 hours, and how many WebSocket clients are connected to the hub
// this handler was given (0 when no hub is wired in).
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	_, total, err := h.postRepo.List(ctx, 1, 0)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	now := time.Now().UTC()
	commission, err := h.ledgerRepo.CommissionReport(ctx, now.Add(-24*time.Hour), now, 1000)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":           now,
		"total_posts":         total,
		"commission_24h":      commission,
		"ws_connections":      wsConnections,
		"scheduler_tick":      h.cfg.Scheduler.TickInterval.String(),
		"scheduler_batchsize": h.cfg.Scheduler.BatchSize,
	})
}
