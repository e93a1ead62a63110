package auth

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// exportedCookie is a cookie as extensions export it. They write the expiry
// as expirationDate and sameSite in lower case.
type exportedCookie struct {
	Cookie
	ExpirationDate float64 `json:"expirationDate"`
}

// ParseJSONCookies reads a JSON array of cookies, the shape exported by most
// browser cookie extensions.
func ParseJSONCookies(r io.Reader) ([]Cookie, error) {
	var raw []exportedCookie
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, e := range raw {
		c := e.Cookie
		if c.Expires <= 0 && e.ExpirationDate > 0 {
			c.Expires = e.ExpirationDate
		}
		c.SameSite = NormalizeSameSite(c.SameSite)
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// NormalizeSameSite maps the spellings browsers and extensions use onto
// "Strict", "Lax" or "None". Unknown values such as "unspecified" become "".
func NormalizeSameSite(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return "Strict"
	case "lax":
		return "Lax"
	case "none", "no_restriction":
		return "None"
	}
	return ""
}

// ParseNetscapeCookies reads a Netscape/curl cookies.txt file. Lines with
// fewer than seven tab-separated fields are ignored; a "#HttpOnly_" domain
// prefix marks an HTTP-only cookie.
func ParseNetscapeCookies(r io.Reader) ([]Cookie, error) {
	var cookies []Cookie
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
			line, httpOnly = rest, true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			fields = strings.Fields(line)
		}
		if len(fields) < 7 {
			continue
		}

		cookie := Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: httpOnly,
		}
		if exp, err := strconv.ParseInt(fields[4], 10, 64); err == nil && exp > 0 {
			cookie.Expires = float64(exp)
		}

		cookies = append(cookies, cookie)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cookies, nil
}
