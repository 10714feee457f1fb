package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-that-is-at-least-32-chars!"
	testRefreshSecret = "refresh-secret-that-is-at-least-32-chars"
)

func newTestCodec() *Codec {
	return NewCodec(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	codec := newTestCodec()

	tok, err := codec.IssueAccess("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := codec.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueAndVerifyRefresh(t *testing.T) {
	codec := newTestCodec()

	tok, err := codec.IssueRefresh("user-1")
	require.NoError(t, err)

	claims, err := codec.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, KindRefresh, claims.Kind)
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := NewCodec(testAccessSecret, testRefreshSecret, -time.Second, -time.Second)

	tok, err := codec.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpired), "expected ErrExpired, got %v", err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec()
	other := NewCodec("another-access-secret-32-chars-long!!!!!", "another-refresh-secret-32-chars-long!!!!", 15*time.Minute, time.Hour)

	tok, err := codec.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = other.VerifyAccess(tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid), "expected ErrInvalid, got %v", err)
	assert.False(t, errors.Is(err, ErrExpired))
}

func TestVerifyKindMismatch(t *testing.T) {
	codec := newTestCodec()

	refresh, err := codec.IssueRefresh("user-1")
	require.NoError(t, err)

	// A refresh token is never a valid access token, even though both are
	// well-formed JWTs. Secrets differ per kind, so this fails on signature.
	_, err = codec.VerifyAccess(refresh)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestVerifyKindClaimChecked(t *testing.T) {
	// Same secret for both kinds: the kind claim itself must reject misuse.
	codec := NewCodec(testAccessSecret, testAccessSecret, 15*time.Minute, time.Hour)

	refresh, err := codec.IssueRefresh("user-1")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(refresh)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestVerifyMalformedToken(t *testing.T) {
	codec := newTestCodec()

	_, err := codec.VerifyAccess("not-a-jwt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}
