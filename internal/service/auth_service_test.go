package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
	"vidstream/internal/repository"
	"vidstream/internal/token"
)

// fakeUserRepo is an in-memory UserRepository with the same atomicity
// semantics the SQL implementation provides.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.CurrentRefreshToken = token
	return nil
}

func (f *fakeUserRepo) SwapRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.CurrentRefreshToken != oldToken {
		return repository.ErrStaleRefreshToken
	}
	u.CurrentRefreshToken = newToken
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.CurrentRefreshToken = ""
	}
	return nil
}

func (f *fakeUserRepo) UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Email = email
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateFullname(ctx context.Context, userID, fullname string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Fullname = fullname
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, userID string, avatar domain.FileRef) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Avatar = avatar
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdateCoverImage(ctx context.Context, userID string, cover domain.FileRef) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.CoverImage = cover
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, userID)
	return nil
}

// fakeMediaStore records uploads and deletes in memory
type fakeMediaStore struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: map[string]bool{}}
}

func (f *fakeMediaStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = true
	return fmt.Sprintf("s3://test/%s", key), nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeMediaStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://test.local/%s", key), nil
}

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()

	repo := newFakeUserRepo()
	codec := token.NewCodec(
		"access-secret-that-is-at-least-32-chars!",
		"refresh-secret-that-is-at-least-32-chars",
		15*time.Minute,
		7*24*time.Hour,
	)

	return NewAuthService(repo, codec, newFakeMediaStore(), bcrypt.MinCost), repo
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		Fullname:     "Test User",
		PasswordHash: string(hash),
	}
	require.NoError(t, repo.Create(context.Background(), user))

	return user
}

func TestLogin_Success(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice",
		Password:   "Correct123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	assert.Equal(t, "Bearer", result.TokenPair.TokenType)

	// The returned identity must be redacted
	assert.Empty(t, result.User.PasswordHash)
	assert.Empty(t, result.User.CurrentRefreshToken)

	// The refresh token is persisted as the single active one
	stored, err := repo.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.TokenPair.RefreshToken, stored.CurrentRefreshToken)
}

func TestLogin_ByEmail(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice@example.com",
		Password:   "Correct123",
	})
	require.NoError(t, err)
}

func TestLogin_NormalizesIdentifier(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	// Mixed case and surrounding whitespace must not matter
	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "  Alice ",
		Password:   "Correct123",
	})
	require.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice",
		Password:   "Wrong1234",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "nobody",
		Password:   "Whatever1",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRefresh_RotationInvariant(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)
	rt1 := login.TokenPair.RefreshToken

	refreshed, err := svc.Refresh(context.Background(), rt1)
	require.NoError(t, err)
	rt2 := refreshed.TokenPair.RefreshToken
	require.NotEqual(t, rt1, rt2)

	// The used token is permanently dead
	_, err = svc.Refresh(context.Background(), rt1)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))

	// The new one works
	_, err = svc.Refresh(context.Background(), rt2)
	require.NoError(t, err)
}

func TestLogin_SingleActiveSession(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	first, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	second, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	// The second login superseded the first session's refresh token
	_, err = svc.Refresh(context.Background(), first.TokenPair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))

	_, err = svc.Refresh(context.Background(), second.TokenPair.RefreshToken)
	require.NoError(t, err)
}

func TestLogout_Idempotent(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.User.ID))
	require.NoError(t, svc.Logout(context.Background(), login.User.ID))

	// The refresh token issued before logout is invalid afterwards
	_, err = svc.Refresh(context.Background(), login.TokenPair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}

func TestAuthenticate_Success(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), login.TokenPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.CurrentRefreshToken)
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), login.User.ID))

	// The token is still signed and unexpired, but the identity is gone
	_, err = svc.Authenticate(context.Background(), login.TokenPair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "alice", "Correct123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Correct123",
	})
	require.NoError(t, err)

	// A refresh token must never pass as an access token
	_, err = svc.Authenticate(context.Background(), login.TokenPair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
}

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "Bob",
		Email:    "Bob@Example.com",
		Fullname: "Bob Builder",
		Password: "Correct123",
	})
	require.NoError(t, err)

	// Username and email are normalized at write time
	assert.Equal(t, "bob", result.User.Username)
	assert.Equal(t, "bob@example.com", result.User.Email)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.Empty(t, result.User.PasswordHash)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, repo := newTestAuthService(t)
	seedUser(t, repo, "bob", "Correct123")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "bob",
		Email:    "other@example.com",
		Fullname: "Bob Builder",
		Password: "Correct123",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Fullname: "Bob Builder",
		Password: "alllowercase1",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestAuthService(t)
	user := seedUser(t, repo, "alice", "Correct123")

	err := svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Correct123",
		NewPassword: "Changed456",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice", Password: "Changed456",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		OldPassword: "Correct123",
		NewPassword: "Another789",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))
}
