package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/service"
)

// SubscriptionHandler handles channel subscription requests
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Toggle handles subscribing to or unsubscribing from a channel
// @Summary Toggle subscription
// @Description Subscribe to the channel, or unsubscribe if already subscribed
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param channelId path string true "Channel (user) ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /subscriptions/c/{channelId} [post]
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	subscribed, err := h.subscriptionService.Toggle(c.Request.Context(), user.ID, c.Param("channelId"))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// ListChannels handles listing channels the current user subscribes to
// @Summary List subscribed channels
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ChannelListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /subscriptions/channels [get]
func (h *SubscriptionHandler) ListChannels(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	response, err := h.subscriptionService.ListChannels(c.Request.Context(),
		user.ID, intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListSubscribers handles listing a channel's subscribers
// @Summary List channel subscribers
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param channelId path string true "Channel (user) ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.ChannelListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /subscriptions/c/{channelId}/subscribers [get]
func (h *SubscriptionHandler) ListSubscribers(c *gin.Context) {
	response, err := h.subscriptionService.ListSubscribers(c.Request.Context(),
		c.Param("channelId"), intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChannelProfile handles fetching a channel's public profile
// @Summary Get channel profile
// @Description Get a channel's profile with subscriber counts and the viewer's subscription state
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} domain.ChannelProfile
// @Failure 404 {object} dto.ErrorResponse
// @Router /channels/{username} [get]
func (h *SubscriptionHandler) ChannelProfile(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	profile, err := h.subscriptionService.ChannelProfile(c.Request.Context(), c.Param("username"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
