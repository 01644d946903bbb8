package handler

import (
	"net/http"
	"strconv"

	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/evetabi/hotornot/internal/service"
	"github.com/gin-gonic/gin"
)

// PostAdminHandler serves /admin/posts endpoints: the back office's window
// onto every post running a Hot-or-Not contest, with a manual tabulation
// trigger for operators who don't want to wait for the scheduler's next tick.
type PostAdminHandler struct {
	postRepo      *repository.PostRepository
	tabulationSvc *service.TabulationService
}

// NewPostAdminHandler creates a PostAdminHandler.
func NewPostAdminHandler(postRepo *repository.PostRepository, tabulationSvc *service.TabulationService) *PostAdminHandler {
	return &PostAdminHandler{postRepo: postRepo, tabulationSvc: tabulationSvc}
}

// List godoc
// GET /admin/posts?page=1&limit=50
func (h *PostAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	posts, total, err := h.postRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, posts, total, page, limit)
}

// Detail godoc
// GET /admin/posts/:id
func (h *PostAdminHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid post id")
		return
	}

	post, err := h.postRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, post)
}

// Tabulate godoc
// POST /admin/posts/:id/slots/:slot/tabulate
//
// A manual escape hatch alongside the scheduler's periodic sweep — an
// operator resolving a support ticket about a stuck slot doesn't need to
// wait for the next tick. Re-tabulating an already-settled slot is a
// harmless no-op, same as when the scheduler races a second tick.
func (h *PostAdminHandler) Tabulate(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid post id")
		return
	}
	slotID, err := strconv.ParseUint(c.Param("slot"), 10, 8)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_SLOT", "invalid slot id")
		return
	}

	payouts, err := h.tabulationSvc.TabulateSlot(c.Request.Context(), postID, uint8(slotID))
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"post_id": postID, "slot_id": slotID, "rooms": payouts})
}
