package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/service"
)

// AuthHandler handles authentication and account requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Register a new user and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	setAuthCookies(c, result)

	c.JSON(http.StatusCreated, authResponse(result))
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with a username or email plus password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	setAuthCookies(c, result)

	c.JSON(http.StatusOK, authResponse(result))
}

// Refresh handles token refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		refreshToken = bearerToken(c)
	}
	if refreshToken == "" {
		respondError(c, domain.E(domain.KindUnauthenticated, "refresh token is required"))
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	setAuthCookies(c, result)

	c.JSON(http.StatusOK, authResponse(result))
}

// Logout handles user logout
// @Summary Logout user
// @Description Invalidate the current session's refresh token
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	clearAuthCookies(c)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// GetMe handles getting the current user profile
// @Summary Get current user profile
// @Description Get the authenticated user's account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword handles password changes
// @Summary Change password
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Password change request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /account/password [patch]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password changed successfully",
	})
}

// ChangeEmail handles email changes
// @Summary Change email
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangeEmailRequest true "Email change request"
// @Success 200 {object} domain.User
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /account/email [patch]
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	var req dto.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.authService.ChangeEmail(c.Request.Context(), user.ID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ChangeFullname handles display name changes
// @Summary Change display name
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangeFullnameRequest true "Display name change request"
// @Success 200 {object} domain.User
// @Failure 400 {object} dto.ErrorResponse
// @Router /account/fullname [patch]
func (h *AuthHandler) ChangeFullname(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	var req dto.ChangeFullnameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.authService.ChangeFullname(c.Request.Context(), user.ID, req.Fullname)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ChangeAvatar handles avatar uploads
// @Summary Change avatar
// @Tags account
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} domain.User
// @Failure 400 {object} dto.ErrorResponse
// @Router /account/avatar [patch]
func (h *AuthHandler) ChangeAvatar(c *gin.Context) {
	h.changeImage(c, "avatar", h.authService.ChangeAvatar)
}

// ChangeCoverImage handles cover image uploads
// @Summary Change cover image
// @Tags account
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} domain.User
// @Failure 400 {object} dto.ErrorResponse
// @Router /account/cover-image [patch]
func (h *AuthHandler) ChangeCoverImage(c *gin.Context) {
	h.changeImage(c, "coverImage", h.authService.ChangeCoverImage)
}

func (h *AuthHandler) changeImage(
	c *gin.Context,
	field string,
	change func(ctx context.Context, userID string, upload service.MediaUpload) (*domain.User, error),
) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		respondError(c, domain.E(domain.KindInvalid, field+" file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, domain.Wrap(domain.KindInternal, "failed to read uploaded file", err))
		return
	}
	defer file.Close()

	updated, err := change(c.Request.Context(), user.ID, service.MediaUpload{
		Reader:      file,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteAccount handles account deletion
// @Summary Delete account
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondError(c, domain.E(domain.KindUnauthenticated, "authentication required"))
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	clearAuthCookies(c)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Account deleted successfully",
	})
}

// setAuthCookies stores both tokens as httpOnly cookies
func setAuthCookies(c *gin.Context, result *service.AuthResult) {
	c.SetCookie(AccessTokenCookie, result.TokenPair.AccessToken,
		result.TokenPair.ExpiresIn, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, result.TokenPair.RefreshToken,
		result.RefreshExpiresIn, "/", "", true, true)
}

// clearAuthCookies expires both token cookies
func clearAuthCookies(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", true, true)
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  result.TokenPair.AccessToken,
		RefreshToken: result.TokenPair.RefreshToken,
		TokenType:    result.TokenPair.TokenType,
		ExpiresIn:    result.TokenPair.ExpiresIn,
		User:         result.User,
	}
}
