package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/evetabi/hotornot/internal/api/middleware"
	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/gin-gonic/gin"
)

// BetHandler serves bet placement and betting-status endpoints.
type BetHandler struct {
	betSvc *service.BetService
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(betSvc *service.BetService) *BetHandler {
	return &BetHandler{betSvc: betSvc}
}

// PlaceBet godoc
// POST /api/posts/:id/bets [X-Principal]
// Body: {"direction":"hot","amount":500}
func (h *BetHandler) PlaceBet(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_POST_ID", "invalid post id")
		return
	}

	var body struct {
		Direction string `json:"direction" binding:"required"`
		Amount    uint64 `json:"amount"    binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	direction := domain.BetDirection(body.Direction)
	if !direction.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_DIRECTION", domain.ErrInvalidBetDirection.Error())
		return
	}

	caller := middleware.GetPrincipal(c)
	result, err := h.betSvc.PlaceBet(c.Request.Context(), postID, caller, direction, body.Amount, time.Now().UTC())
	if err != nil {
		writeBetError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, result)
}

// GetStatus godoc
// GET /api/posts/:id/betting-status [X-Principal]
func (h *BetHandler) GetStatus(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_POST_ID", "invalid post id")
		return
	}

	caller := middleware.GetPrincipal(c)
	status, err := h.betSvc.GetStatus(c.Request.Context(), postID, caller, time.Now().UTC())
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_POST_NOT_FOUND", domain.ErrPostNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch betting status")
		return
	}
	respondSuccess(c, http.StatusOK, status)
}

// writeBetError maps domain betting errors to HTTP status codes.
func writeBetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotLoggedIn):
		respondError(c, http.StatusUnauthorized, "ERR_NOT_LOGGED_IN", err.Error())
	case errors.Is(err, domain.ErrBettingClosed):
		respondError(c, http.StatusConflict, "ERR_BETTING_CLOSED", err.Error())
	case errors.Is(err, domain.ErrUserAlreadyParticipated):
		respondError(c, http.StatusConflict, "ERR_ALREADY_PARTICIPATED", err.Error())
	case errors.Is(err, domain.ErrInvalidBetDirection):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_DIRECTION", err.Error())
	case errors.Is(err, domain.ErrBetTooSmall):
		respondError(c, http.StatusBadRequest, "ERR_BET_TOO_SMALL", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_POST_NOT_FOUND", domain.ErrPostNotFound.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bet")
	}
}
