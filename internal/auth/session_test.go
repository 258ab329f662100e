package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sample(name string) *Session {
	return &Session{
		Name: name,
		URL:  "https://example.test",
		Cookies: []Cookie{
			{Name: "sid", Value: "abc", Domain: ".example.test", Path: "/", Secure: true, SameSite: "Lax"},
			{Name: "pref", Value: "1", Domain: ".example.test", Path: "/", Expires: float64(time.Now().Add(time.Hour).Unix())},
		},
		CreatedAt: time.Now(),
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Save(sample("b")))
	require.NoError(t, s.Save(sample("a")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	got, err := s.Load("a")
	require.NoError(t, err)
	assert.Len(t, got.Cookies, 2)
	assert.Equal(t, "sid", got.Cookies[0].Name)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"))
	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	s := NewFileStore(t.TempDir() + "/missing")
	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_Expired(t *testing.T) {
	s := NewFileStore(t.TempDir())
	sess := sample("old")
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, s.Save(sess))

	_, err := s.Load("old")
	assert.True(t, errors.Is(err, ErrExpired))
}

func TestStore_InvalidNames(t *testing.T) {
	s := NewFileStore(t.TempDir())
	for _, name := range []string{"", "../x", "_manifest"} {
		assert.Error(t, s.Save(sample(name)), "name %q", name)
	}
}

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	s := &Store{dir: t.TempDir()}

	require.NoError(t, s.Save(sample("k1")))
	require.NoError(t, s.Save(sample("k2")))
	require.NoError(t, s.Save(sample("k1")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, names)

	_, err = s.Load("k2")
	require.NoError(t, err)

	require.NoError(t, s.Delete("k1"))
	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"k2"}, names)
	assert.Equal(t, "keyring", s.Backend())
}

func TestCookieConversions(t *testing.T) {
	sess := sample("c")

	params := sess.CookieParams()
	require.Len(t, params, 2)
	assert.Equal(t, network.CookieSameSiteLax, params[0].SameSite)
	assert.Nil(t, params[0].Expires)
	assert.NotNil(t, params[1].Expires)

	hc := sess.HTTPCookies()
	require.Len(t, hc, 2)
	assert.True(t, hc[0].Secure)
	assert.False(t, hc[1].Expires.IsZero())
}

func TestFromBrowserAndExpiry(t *testing.T) {
	cookies := fromBrowser([]*network.Cookie{
		{Name: "a", Value: "1", Expires: 100},
		{Name: "b", Value: "2", Expires: 200, SameSite: network.CookieSameSiteStrict},
	})
	require.Len(t, cookies, 2)
	assert.Equal(t, "Strict", cookies[1].SameSite)
	assert.Equal(t, time.Unix(200, 0), latestExpiry(cookies))
	assert.True(t, latestExpiry([]Cookie{{Name: "s"}}).IsZero())
}
