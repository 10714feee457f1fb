package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/service"
)

const (
	// AccessTokenCookie and RefreshTokenCookie are the names browsers
	// send tokens under. Non-browser clients use the Authorization
	// header instead.
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	currentUserKey = "currentUser"
	ownedVideoKey  = "ownedVideo"
)

// AuthMiddleware resolves the access token and loads the authenticated
// user into the request context. The cookie takes precedence over the
// Authorization header when both are present.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := extractAccessToken(c)
		if accessToken == "" {
			abortError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), accessToken)
		if err != nil {
			abortError(c, err)
			return
		}

		c.Set(currentUserKey, user)

		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	return bearerToken(c)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or returns "" if the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the authenticated user placed in the context by
// AuthMiddleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*domain.User)
	return user, ok
}

// RequireVideoOwnership loads the video named by the videoId path or
// query parameter and rejects the request unless the authenticated user
// owns it. Must run after AuthMiddleware. The loaded video is stored in the
// context so handlers do not fetch it twice.
func RequireVideoOwnership(videoService service.VideoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
			return
		}

		videoID := c.Param("videoId")
		if videoID == "" {
			videoID = c.Query("videoId")
		}
		if videoID == "" {
			abortError(c, domain.E(domain.KindInvalid, "video id is required"))
			return
		}

		video, err := videoService.Load(c.Request.Context(), videoID)
		if err != nil {
			abortError(c, err)
			return
		}

		if video.OwnerID != user.ID {
			abortError(c, domain.E(domain.KindForbidden, "you do not own this video"))
			return
		}

		c.Set(ownedVideoKey, video)

		c.Next()
	}
}

// OwnedVideo returns the video placed in the context by
// RequireVideoOwnership.
func OwnedVideo(c *gin.Context) (*domain.Video, bool) {
	value, exists := c.Get(ownedVideoKey)
	if !exists {
		return nil, false
	}

	video, ok := value.(*domain.Video)
	return video, ok
}
