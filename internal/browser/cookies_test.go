package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieJSON = `[
  {"name": "GSESSIONID", "value": "abc", "domain": ".glassdoor.co.uk", "path": "/", "expires": 1893456000, "httpOnly": true, "secure": true, "sameSite": "Lax"},
  {"name": "gdId", "value": "xyz", "domain": ".glassdoor.co.uk", "sameSite": "no_restriction"}
]`

func writeCookies(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies-glassdoor.json")
	require.NoError(t, os.WriteFile(path, []byte(cookieJSON), 0o644))
	return path
}

func TestLoadCookies(t *testing.T) {
	cookies, err := LoadCookies(writeCookies(t))
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	pw := cookies[0].ToPlayWright()
	assert.Equal(t, "GSESSIONID", pw.Name)
	assert.Equal(t, ".glassdoor.co.uk", *pw.Domain)
	assert.Equal(t, 1893456000.0, *pw.Expires)
	assert.True(t, *pw.HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, pw.SameSite)

	second := cookies[1].ToPlayWright()
	assert.Equal(t, "/", *second.Path)
	assert.Nil(t, second.Expires)
	assert.Equal(t, playwright.SameSiteAttributeNone, second.SameSite)

	r := cookies[0].ToRod()
	assert.Equal(t, proto.NetworkCookieSameSiteLax, r.SameSite)
	assert.Equal(t, proto.TimeSinceEpoch(1893456000), r.Expires)
	assert.True(t, r.HTTPOnly)
}

func TestLoadCookiesErrors(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadCookies(bad)
	assert.Error(t, err)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "msedge", channel("EDGE"))
	assert.Equal(t, "msedge", channel(""))
	assert.Equal(t, "chrome", channel("chrome"))
	assert.Equal(t, "", channel("CHROMIUM"))
	assert.Equal(t, "chrome-beta", channel("chrome-beta"))
}
