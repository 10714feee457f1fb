package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/service"
)

// VideoHandler handles video requests
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
	}
}

// List handles listing published videos
// @Summary List videos
// @Description List published videos with search, channel filtering, sorting and pagination
// @Tags videos
// @Produce json
// @Param query query string false "Full text search over titles"
// @Param channelId query string false "Restrict to one channel"
// @Param sortBy query string false "Sort column (created_at, title, duration)"
// @Param sortType query string false "asc or desc"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.VideoListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	filter := domain.VideoFilter{
		Query:     c.Query("query"),
		ChannelID: c.Query("channelId"),
		SortBy:    c.Query("sortBy"),
		SortAsc:   c.Query("sortType") == "asc",
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 10),
	}

	response, err := h.videoService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Publish handles publishing a new video
// @Summary Publish a video
// @Description Upload a video file and thumbnail and publish the video
// @Tags videos
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param duration formData number false "Duration in seconds"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 201 {object} dto.VideoResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /videos [post]
func (h *VideoHandler) Publish(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)

	videoUpload, videoFile, err := formUpload(c, "videoFile")
	if err != nil {
		respondError(c, err)
		return
	}
	defer videoFile.Close()

	thumbUpload, thumbFile, err := formUpload(c, "thumbnail")
	if err != nil {
		respondError(c, err)
		return
	}
	defer thumbFile.Close()

	video, err := h.videoService.Publish(c.Request.Context(),
		user.ID, title, description, duration, videoUpload, thumbUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.VideoResponse{Video: video})
}

// Get handles fetching a single video
// @Summary Get a video
// @Description Fetch a video and record a view for the watching user
// @Tags videos
// @Security BearerAuth
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} dto.VideoResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /videos/{videoId} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	response, err := h.videoService.Get(c.Request.Context(), c.Param("videoId"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateFile handles replacing the video file. Ownership is enforced by
// middleware.
// @Summary Replace video file
// @Tags videos
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param videoId path string true "Video ID"
// @Param videoFile formData file true "Video file"
// @Success 200 {object} dto.VideoResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /videos/{videoId}/file [patch]
func (h *VideoHandler) UpdateFile(c *gin.Context) {
	h.replaceMedia(c, "videoFile", h.videoService.ReplaceFile)
}

// UpdateThumbnail handles replacing the thumbnail. Ownership is enforced
// by middleware.
// @Summary Replace thumbnail
// @Tags videos
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param videoId path string true "Video ID"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 200 {object} dto.VideoResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /videos/{videoId}/thumbnail [patch]
func (h *VideoHandler) UpdateThumbnail(c *gin.Context) {
	h.replaceMedia(c, "thumbnail", h.videoService.ReplaceThumbnail)
}

// UpdateTitle handles renaming a video
// @Summary Update title
// @Tags videos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param videoId path string true "Video ID"
// @Param request body dto.UpdateTitleRequest true "Title update"
// @Success 200 {object} dto.VideoResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /videos/{videoId}/title [patch]
func (h *VideoHandler) UpdateTitle(c *gin.Context) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	var req dto.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.videoService.UpdateTitle(c.Request.Context(), video.ID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VideoResponse{Video: updated})
}

// UpdateDescription handles changing a video's description
// @Summary Update description
// @Tags videos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param videoId path string true "Video ID"
// @Param request body dto.UpdateDescriptionRequest true "Description update"
// @Success 200 {object} dto.VideoResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /videos/{videoId}/description [patch]
func (h *VideoHandler) UpdateDescription(c *gin.Context) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	var req dto.UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.videoService.UpdateDescription(c.Request.Context(), video.ID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VideoResponse{Video: updated})
}

// TogglePublish handles flipping a video's publish status
// @Summary Toggle publish status
// @Tags videos
// @Security BearerAuth
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} dto.VideoResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /videos/{videoId}/toggle-publish [patch]
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	updated, err := h.videoService.TogglePublish(c.Request.Context(), video.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VideoResponse{Video: updated})
}

// Delete handles deleting a video
// @Summary Delete a video
// @Tags videos
// @Security BearerAuth
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /videos/{videoId} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), video); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Video deleted successfully",
	})
}

func (h *VideoHandler) replaceMedia(
	c *gin.Context,
	field string,
	replace func(ctx context.Context, video *domain.Video, upload service.MediaUpload) (*domain.Video, error),
) {
	video, ok := OwnedVideo(c)
	if !ok {
		respondError(c, domain.E(domain.KindInternal, "video missing from context"))
		return
	}

	upload, file, err := formUpload(c, field)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	updated, err := replace(c.Request.Context(), video, upload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VideoResponse{Video: updated})
}

// formUpload opens a multipart file field as a MediaUpload. The caller
// closes the returned file.
func formUpload(c *gin.Context, field string) (service.MediaUpload, multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return service.MediaUpload{}, nil, domain.E(domain.KindInvalid, field+" file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return service.MediaUpload{}, nil, domain.Wrap(domain.KindInternal, "failed to read uploaded file", err)
	}

	return service.MediaUpload{
		Reader:      file,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, file, nil
}

// intQuery parses a positive integer query parameter with a default
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}

	return value
}
