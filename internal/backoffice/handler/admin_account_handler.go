package handler

import (
	"net/http"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminAccountHandler serves /admin/accounts endpoints: managing the
// back-office staff roster itself. Bettors never appear here — this is
// purely the operator/finance/ops login population.
type AdminAccountHandler struct {
	adminRepo *repository.AdminRepository
	authSvc   *service.AdminAuthService
}

// NewAdminAccountHandler creates an AdminAccountHandler.
func NewAdminAccountHandler(adminRepo *repository.AdminRepository, authSvc *service.AdminAuthService) *AdminAccountHandler {
	return &AdminAccountHandler{adminRepo: adminRepo, authSvc: authSvc}
}

// List godoc
// GET /admin/accounts?page=1&limit=50
func (h *AdminAccountHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	accounts, total, err := h.adminRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	profiles := make([]domain.PublicProfile, 0, len(accounts))
	for _, a := range accounts {
		profiles = append(profiles, a.ToPublicProfile())
	}
	respondList(c, profiles, total, page, limit)
}

// Create godoc
// POST /admin/accounts
// Body: {"username": "...", "email": "...", "password": "...", "role": "ops"}
//
// Only a RoleAdmin can reach this route (enforced by AdminRoleMiddleware in
// the router) — new back-office logins are provisioned by an existing admin,
// never self-registered.
func (h *AdminAccountHandler) Create(c *gin.Context) {
	var req service.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	if !req.Role.CanAccessBackoffice() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "unknown role")
		return
	}

	resp, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		if domain.IsConflict(err) {
			respondError(c, http.StatusConflict, "ERR_CONFLICT", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusCreated, resp.Account.ToPublicProfile())
}

// Detail godoc
// GET /admin/accounts/:id
func (h *AdminAccountHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid account id")
		return
	}
	account, err := h.adminRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, account.ToPublicProfile())
}

// SetRole godoc
// POST /admin/accounts/:id/role
// Body: {"role": "finance"}
func (h *AdminAccountHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid account id")
		return
	}
	var body struct {
		Role domain.AdminRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	if !body.Role.CanAccessBackoffice() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "unknown role")
		return
	}
	if err := h.adminRepo.UpdateRole(c.Request.Context(), id, body.Role); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id, "role": body.Role})
}

// Suspend godoc
// POST /admin/accounts/:id/suspend
func (h *AdminAccountHandler) Suspend(c *gin.Context) {
	h.setActive(c, false)
}

// Activate godoc
// POST /admin/accounts/:id/activate
func (h *AdminAccountHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AdminAccountHandler) setActive(c *gin.Context, active bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid account id")
		return
	}
	if err := h.adminRepo.SetActive(c.Request.Context(), id, active); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id, "is_active": active})
}
