package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/service"
)

// ViewHandler handles watch history and viewer listing requests
type ViewHandler struct {
	viewService service.ViewService
}

// NewViewHandler creates a new view handler
func NewViewHandler(viewService service.ViewService) *ViewHandler {
	return &ViewHandler{
		viewService: viewService,
	}
}

// WatchHistory handles listing the current user's watch history
// @Summary Get watch history
// @Description List videos the user has watched, most recent first
// @Tags views
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.VideoListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /views/history [get]
func (h *ViewHandler) WatchHistory(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	response, err := h.viewService.WatchHistory(c.Request.Context(),
		user.ID, intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// VideoViewers handles listing the viewers of an owned video. Ownership
// is enforced by middleware.
// @Summary List video viewers
// @Tags views
// @Security BearerAuth
// @Produce json
// @Param videoId path string true "Video ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ViewerListResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /videos/{videoId}/viewers [get]
func (h *ViewHandler) VideoViewers(c *gin.Context) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	response, err := h.viewService.VideoViewers(c.Request.Context(),
		video.ID, intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
