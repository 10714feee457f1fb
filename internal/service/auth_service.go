package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/repository"
	"vidstream/internal/token"
	"vidstream/internal/utils"
)

// authService implements AuthService. It is the only component that mints
// refresh tokens and writes them to the user store, so the single active
// refresh token invariant is enforced entirely here.
type authService struct {
	users      repository.UserRepository
	codec      *token.Codec
	media      MediaStore
	bcryptCost int
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserRepository,
	codec *token.Codec,
	media MediaStore,
	bcryptCost int,
) AuthService {
	return &authService{
		users:      users,
		codec:      codec,
		media:      media,
		bcryptCost: bcryptCost,
	}
}

// Register registers a new user and logs them in
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	if !utils.ValidateEmail(req.Email) {
		return nil, domain.E(domain.KindInvalid, "invalid email format")
	}

	if !utils.ValidatePassword(req.Password) {
		return nil, domain.E(domain.KindInvalid,
			"password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to hash password", err)
	}

	user := &domain.User{
		Username:     utils.NormalizeIdentifier(req.Username),
		Email:        utils.NormalizeIdentifier(req.Email),
		Fullname:     req.Fullname,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domain.E(domain.KindConflict, "user with this username or email already exists")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to create user", err)
	}

	return s.issueSession(ctx, user)
}

// Login authenticates a user by username or email
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByIdentifier(ctx, utils.NormalizeIdentifier(req.Identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user does not exist")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to look up user", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, domain.E(domain.KindUnauthenticated, "invalid credentials")
	}

	return s.issueSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new token pair, rotating
// the stored token. A refresh token can be used exactly once: after a
// successful rotation the previous token is permanently unusable.
func (s *authService) Refresh(ctx context.Context, oldRefreshToken string) (*AuthResult, error) {
	claims, err := s.codec.VerifyRefresh(oldRefreshToken)
	if err != nil {
		return nil, domain.Wrap(domain.KindUnauthenticated, "invalid refresh token", err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindUnauthenticated, "invalid refresh token")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	if subtle.ConstantTimeCompare([]byte(oldRefreshToken), []byte(user.CurrentRefreshToken)) != 1 {
		return nil, domain.E(domain.KindUnauthenticated, "refresh token is expired or has been used")
	}

	accessToken, err := s.codec.IssueAccess(user.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to issue access token", err)
	}

	refreshToken, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to issue refresh token", err)
	}

	// Single atomic compare-and-swap: if a concurrent refresh or logout
	// already replaced the stored token, this one loses.
	err = s.users.SwapRefreshToken(ctx, user.ID, oldRefreshToken, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrStaleRefreshToken) {
			return nil, domain.E(domain.KindUnauthenticated, "refresh token is expired or has been used")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to rotate refresh token", err)
	}

	return &AuthResult{
		User: user.Redacted(),
		TokenPair: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    s.codec.AccessExpirySeconds(),
		},
		RefreshExpiresIn: s.codec.RefreshExpirySeconds(),
	}, nil
}

// Logout invalidates the user's refresh token. Idempotent: logging out
// twice is not an error.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to clear refresh token", err)
	}
	return nil
}

// Authenticate verifies an access token and loads the redacted user
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, domain.Wrap(domain.KindUnauthenticated, "access token expired", err)
		}
		return nil, domain.Wrap(domain.KindUnauthenticated, "invalid access token", err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		// A deleted account can still hold a signed, unexpired token
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindUnauthenticated, "invalid access token")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	return user.Redacted(), nil
}

// GetUser returns the redacted user by id
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	return user.Redacted(), nil
}

// ChangePassword verifies the old password and stores a new hash
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "user not found")
		}
		return domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return domain.E(domain.KindInvalid, "invalid old password")
	}

	if !utils.ValidatePassword(req.NewPassword) {
		return domain.E(domain.KindInvalid,
			"password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to update password", err)
	}

	return nil
}

// ChangeEmail changes the account email
func (s *authService) ChangeEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	if !utils.ValidateEmail(email) {
		return nil, domain.E(domain.KindInvalid, "invalid email format")
	}

	user, err := s.users.UpdateEmail(ctx, userID, utils.NormalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domain.E(domain.KindConflict, "email already taken")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to update email", err)
	}

	return user.Redacted(), nil
}

// ChangeFullname changes the account display name
func (s *authService) ChangeFullname(ctx context.Context, userID, fullname string) (*domain.User, error) {
	user, err := s.users.UpdateFullname(ctx, userID, fullname)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to update fullname", err)
	}

	return user.Redacted(), nil
}

// ChangeAvatar uploads a new avatar and removes the previous one
func (s *authService) ChangeAvatar(ctx context.Context, userID string, upload MediaUpload) (*domain.User, error) {
	return s.changeImage(ctx, userID, upload, "avatars",
		func(u *domain.User) domain.FileRef { return u.Avatar },
		s.users.UpdateAvatar)
}

// ChangeCoverImage uploads a new cover image and removes the previous one
func (s *authService) ChangeCoverImage(ctx context.Context, userID string, upload MediaUpload) (*domain.User, error) {
	return s.changeImage(ctx, userID, upload, "covers",
		func(u *domain.User) domain.FileRef { return u.CoverImage },
		s.users.UpdateCoverImage)
}

func (s *authService) changeImage(
	ctx context.Context,
	userID string,
	upload MediaUpload,
	prefix string,
	current func(*domain.User) domain.FileRef,
	update func(context.Context, string, domain.FileRef) (*domain.User, error),
) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.E(domain.KindNotFound, "user not found")
		}
		return nil, domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	ref, err := uploadMedia(ctx, s.media, prefix, upload)
	if err != nil {
		return nil, err
	}

	if old := current(user); old.Key != "" {
		// The new image is already stored; a leaked old object is not
		// worth failing the request over.
		_ = s.media.Delete(ctx, old.Key)
	}

	updated, err := update(ctx, userID, ref)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to update image", err)
	}

	return updated.Redacted(), nil
}

// DeleteAccount removes the user and their media. Owned videos, views and
// subscriptions cascade at the schema level.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.E(domain.KindNotFound, "user not found")
		}
		return domain.Wrap(domain.KindInternal, "failed to load user", err)
	}

	if user.Avatar.Key != "" {
		_ = s.media.Delete(ctx, user.Avatar.Key)
	}
	if user.CoverImage.Key != "" {
		_ = s.media.Delete(ctx, user.CoverImage.Key)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return domain.Wrap(domain.KindInternal, "failed to delete user", err)
	}

	return nil
}

// issueSession mints a token pair and persists the refresh token,
// overwriting any previously stored one. This is what keeps at most one
// refresh token valid per user.
func (s *authService) issueSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.codec.IssueAccess(user.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to issue access token", err)
	}

	refreshToken, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to issue refresh token", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, domain.Wrap(domain.KindInternal, "failed to persist refresh token", err)
	}

	return &AuthResult{
		User: user.Redacted(),
		TokenPair: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    s.codec.AccessExpirySeconds(),
		},
		RefreshExpiresIn: s.codec.RefreshExpirySeconds(),
	}, nil
}

// uploadMedia stores an upload under a fresh key derived from the prefix
// and the original file extension.
func uploadMedia(ctx context.Context, store MediaStore, prefix string, upload MediaUpload) (domain.FileRef, error) {
	if upload.Reader == nil {
		return domain.FileRef{}, domain.E(domain.KindInvalid, "file is required")
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), filepath.Ext(upload.Filename))

	url, err := store.Upload(ctx, key, upload.Reader, upload.ContentType)
	if err != nil {
		return domain.FileRef{}, domain.Wrap(domain.KindInternal, "failed to upload file", err)
	}

	return domain.FileRef{URL: url, Key: key}, nil
}
