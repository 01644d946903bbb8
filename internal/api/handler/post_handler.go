package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evetabi/hotornot/internal/api/middleware"
	"github.com/evetabi/hotornot/internal/domain"
	"github.com/evetabi/hotornot/internal/repository"
	"github.com/gin-gonic/gin"
)

// PostHandler serves post creation and lookup endpoints. Posts themselves
// (media, captions, feed ranking) live entirely outside this service — only
// the fields the betting engine needs are modelled or exposed here.
type PostHandler struct {
	postRepo *repository.PostRepository
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(postRepo *repository.PostRepository) *PostHandler {
	return &PostHandler{postRepo: postRepo}
}

// CreatePost godoc
// POST /api/posts [X-Principal]
func (h *PostHandler) CreatePost(c *gin.Context) {
	owner := middleware.GetPrincipal(c)
	if owner.IsAnonymous() {
		respondError(c, http.StatusUnauthorized, "ERR_NOT_LOGGED_IN", domain.ErrUserNotLoggedIn.Error())
		return
	}

	var body struct {
		ID uint64 `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	post := &domain.Post{ID: body.ID, Owner: owner, CreatedAt: time.Now().UTC()}
	if err := h.postRepo.Create(c.Request.Context(), post); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create post")
		return
	}
	respondSuccess(c, http.StatusCreated, post)
}

// GetPost godoc
// GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_POST_ID", "invalid post id")
		return
	}

	post, err := h.postRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_POST_NOT_FOUND", domain.ErrPostNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch post")
		return
	}
	respondSuccess(c, http.StatusOK, post)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return
}
