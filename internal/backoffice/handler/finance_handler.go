package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evetabi/hotornot/internal/repository"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves /admin/finance endpoints: commission reporting and
// per-principal ledger history, reconciled straight from ledger_entries.
type FinanceHandler struct {
	ledgerRepo *repository.LedgerRepository
}

// NewFinanceHandler creates a FinanceHandler.
func NewFinanceHandler(ledgerRepo *repository.LedgerRepository) *FinanceHandler {
	return &FinanceHandler{ledgerRepo: ledgerRepo}
}

// CommissionReport godoc
// GET /admin/finance/commission?from=2026-01-01&to=2026-01-31&limit=100
func (h *FinanceHandler) CommissionReport(c *gin.Context) {
	from, to, err := parseReportWindow(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_DATE", err.Error())
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	rows, err := h.ledgerRepo.CommissionReport(c.Request.Context(), from, to, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"from": from, "to": to, "principals": rows})
}

// Ledger godoc
// GET /admin/finance/ledger/:principal?page=1&limit=50
//
// A per-principal audit trail: every bet placed, payout earned, or
// commission credited, most recent first — the same history a wallet page
// would show a bettor, but reachable by an operator for any principal.
func (h *FinanceHandler) Ledger(c *gin.Context) {
	principal := c.Param("principal")
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	entries, err := h.ledgerRepo.GetEntries(c.Request.Context(), principal, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, entries, len(entries), page, limit)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func parseReportWindow(c *gin.Context) (from, to time.Time, err error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		from = time.Now().UTC().AddDate(0, -1, 0).Truncate(24 * time.Hour)
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = to.Add(24 * time.Hour)
	} else {
		to = time.Now().UTC()
	}
	return from, to, nil
}
