// Package output writes a scrape result to disk as JSON, CSV or Markdown.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/tokscrape/pkg/models"
)

// Filename returns the base name for a result of username's tab, e.g.
// tiktok_someone_popular.json for ext "json". Path separators and other
// characters outside a handle's alphabet are replaced with '_', so the name
// never leaves the directory it is joined onto.
func Filename(username, tab, ext string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(tab), "_"))
	if slug == "" {
		slug = "popular"
	}
	return fmt.Sprintf("tiktok_%s_%s.%s", fileSafe(username), fileSafe(slug), ext)
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}

// EncodeJSON writes res with two-space indentation and without escaping
// HTML characters, so links and bios read exactly as scraped.
func EncodeJSON(w io.Writer, res *models.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// SaveJSON writes res to path.
func SaveJSON(res *models.Result, path string) error {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, res); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// LoadJSON reads a result previously written by SaveJSON.
func LoadJSON(path string) (*models.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res models.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &res, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
