package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetscapeCookies(t *testing.T) {
	input := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		"",
		".tiktok.com\tTRUE\t/\tTRUE\t1767225600\ttt_chain_token\tabc",
		"#HttpOnly_.tiktok.com\tTRUE\t/\tTRUE\t0\tsessionid\txyz",
		"broken line",
	}, "\n")

	cookies, err := ParseNetscapeCookies(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	assert.Equal(t, "tt_chain_token", cookies[0].Name)
	assert.Equal(t, float64(1767225600), cookies[0].Expires)
	assert.False(t, cookies[0].HTTPOnly)

	assert.Equal(t, "sessionid", cookies[1].Name)
	assert.Equal(t, ".tiktok.com", cookies[1].Domain)
	assert.True(t, cookies[1].HTTPOnly)
	assert.Zero(t, cookies[1].Expires)
}

func TestParseJSONCookies(t *testing.T) {
	cookies, err := ParseJSONCookies(strings.NewReader(`[{"name":"sessionid","value":"x","domain":".tiktok.com","path":"/","httpOnly":true}]`))
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HTTPOnly)

	_, err = ParseJSONCookies(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestParseJSONCookies_ExtensionExport(t *testing.T) {
	input := `[
		{"name":"sessionid","value":"x","domain":".tiktok.com","path":"/","expirationDate":1767225600.5,"sameSite":"no_restriction","hostOnly":false},
		{"name":"tt_csrf_token","value":"y","domain":".tiktok.com","path":"/","expires":1700000000,"expirationDate":1800000000,"sameSite":"lax"},
		{"name":"msToken","value":"z","domain":".tiktok.com","path":"/","session":true,"sameSite":"unspecified"}
	]`

	cookies, err := ParseJSONCookies(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cookies, 3)

	assert.Equal(t, 1767225600.5, cookies[0].Expires)
	assert.Equal(t, "None", cookies[0].SameSite)

	assert.Equal(t, float64(1700000000), cookies[1].Expires, "explicit expires wins")
	assert.Equal(t, "Lax", cookies[1].SameSite)

	assert.Zero(t, cookies[2].Expires)
	assert.Empty(t, cookies[2].SameSite)

	assert.Equal(t, int64(1767225600), ExpiryFromCookies(cookies).Unix(), "imported session gets an expiry")
}

func TestNormalizeSameSite(t *testing.T) {
	tests := map[string]string{
		"Strict":         "Strict",
		"strict":         "Strict",
		" LAX ":          "Lax",
		"none":           "None",
		"no_restriction": "None",
		"unspecified":    "",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSameSite(in), "input %q", in)
	}
}
