package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadDeleteList(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "sessions"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	s := &Session{
		Name:      "main",
		URL:       DefaultLoginURL,
		Cookies:   []Cookie{{Name: "sessionid", Value: "abc", Domain: ".tiktok.com", Path: "/"}},
		CreatedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(s))

	loaded, err := store.Load("main")
	require.NoError(t, err)
	assert.Equal(t, s.Cookies, loaded.Cookies)
	assert.True(t, s.CreatedAt.Equal(loaded.CreatedAt))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, names)

	require.NoError(t, store.Delete("main"))
	_, err = store.Load("main")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	// deleting twice is fine
	assert.NoError(t, store.Delete("main"))
}

func TestFileStore_RejectsBadNames(t *testing.T) {
	store := NewFileStore(t.TempDir())

	for _, name := range []string{"", "../escape", `a\b`, ".."} {
		t.Run(name, func(t *testing.T) {
			err := store.Save(&Session{Name: name})
			assert.Error(t, err)
		})
	}
}

func TestLoadValid_Expired(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(&Session{
		Name:      "old",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err := LoadValid(store, "old")
	assert.True(t, errors.Is(err, ErrSessionExpired))
}

func TestExpiryFromCookies(t *testing.T) {
	assert.True(t, ExpiryFromCookies(nil).IsZero())
	assert.True(t, ExpiryFromCookies([]Cookie{{Expires: -1}}).IsZero())

	got := ExpiryFromCookies([]Cookie{{Expires: 100}, {Expires: 300}, {Expires: 200}})
	assert.Equal(t, int64(300), got.Unix())
}

func TestFromNetworkCookies(t *testing.T) {
	got := FromNetworkCookies([]*network.Cookie{{
		Name:     "tt_csrf_token",
		Value:    "x",
		Domain:   ".tiktok.com",
		Path:     "/",
		Expires:  1700000000,
		HTTPOnly: true,
		Secure:   true,
		SameSite: network.CookieSameSiteLax,
	}})

	require.Len(t, got, 1)
	assert.Equal(t, "Lax", got[0].SameSite)
	assert.True(t, got[0].HTTPOnly)
	assert.Equal(t, float64(1700000000), got[0].Expires)
}
