package tokenstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/giantswarm/spotauth/pkg/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleToken() *oauth.TokenResponse {
	return &oauth.TokenResponse{
		AccessToken:  "access-value",
		TokenType:    "Bearer",
		RefreshToken: "refresh-value",
		ExpiresIn:    3600,
		Scope:        "user-read-private",
	}
}

func TestStore_FileRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	store, err := New(Config{Dir: dir, FileMode: true})
	require.NoError(t, err)

	require.NoError(t, store.Save("client-a", "pkce", sampleToken()))

	// a fresh store reads it back from disk
	reopened, err := New(Config{Dir: dir, FileMode: true})
	require.NoError(t, err)

	tok, err := reopened.Load("client-a")
	require.NoError(t, err)
	assert.Equal(t, "access-value", tok.AccessToken)
	assert.Equal(t, "refresh-value", tok.RefreshToken)
	assert.Equal(t, "pkce", tok.Flow)
	assert.Equal(t, "client-a", tok.ClientID)
	assert.False(t, tok.ExpiresAt.IsZero())
	assert.False(t, tok.Expired(time.Minute))

	resp := tok.ToTokenResponse()
	assert.Equal(t, "user-read-private", resp.Scope)
	assert.Equal(t, tok.ExpiresAt, resp.ExpiresAt)
}

func TestStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}

	dir := filepath.Join(t.TempDir(), "tokens")
	store, err := New(Config{Dir: dir, FileMode: true})
	require.NoError(t, err)
	require.NoError(t, store.Save("client-a", "code", sampleToken()))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	info, err = os.Stat(store.Path("client-a"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_ExpiredTokenIsStillLoaded(t *testing.T) {
	store, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	tok := sampleToken()
	tok.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save("client-a", "code", tok))

	loaded, err := store.Load("client-a")
	require.NoError(t, err)
	assert.True(t, loaded.Expired(0))
	assert.Equal(t, "refresh-value", loaded.RefreshToken)
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	store, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, store.Save("client-a", "code", sampleToken()))
	first, err := store.Load("client-a")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	rotated := sampleToken()
	rotated.AccessToken = "rotated"
	require.NoError(t, store.Save("client-a", "code", rotated))

	second, err := store.Load("client-a")
	require.NoError(t, err)
	assert.Equal(t, "rotated", second.AccessToken)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestStore_NotFoundAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(Config{Dir: dir, FileMode: true})
	require.NoError(t, err)

	_, err = store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save("client-a", "code", sampleToken()))
	require.NoError(t, store.Delete("client-a"))
	_, err = store.Load("client-a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = os.Stat(store.Path("client-a"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete("client-a"))
}

func TestStore_RejectsEmptyToken(t *testing.T) {
	store, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Error(t, store.Save("client-a", "code", nil))
	assert.Error(t, store.Save("client-a", "code", &oauth.TokenResponse{}))
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(Config{Dir: dir, FileMode: true})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path("client-a"), []byte("{not json"), 0600))
	_, err = store.Load("client-a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTokenKey(t *testing.T) {
	assert.Len(t, tokenKey("client"), 32)
	assert.Equal(t, tokenKey("client"), tokenKey("client"))
	assert.NotEqual(t, tokenKey("client"), tokenKey("other"))
}

func TestStore_LoadReturnsCopy(t *testing.T) {
	store, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, store.Save("client-a", "pkce", sampleToken()))

	tok, err := store.Load("client-a")
	require.NoError(t, err)
	tok.AccessToken = "changed"
	tok.RefreshToken = ""

	again, err := store.Load("client-a")
	require.NoError(t, err)
	assert.Equal(t, "access-value", again.AccessToken)
	assert.Equal(t, "refresh-value", again.RefreshToken)
}
