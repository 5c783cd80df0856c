// Package input resolves spec §6's text_or_url acceptance rule into plain
// text: literal strings pass through untouched; local files are parsed by
// extension (falling back to raw bytes); http(s) URLs are fetched with a
// bounded read and, for HTML responses, stripped to plain text.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnreadable is returned when a local file path or URL could not be
// read at all (the root facade wraps this as ErrInput).
var ErrUnreadable = errors.New("input: could not read source")

// ErrUnsupportedFormat names a file format this package has no loader
// for. Load does not return it: files with an unrecognized extension are
// read as plain text.
var ErrUnsupportedFormat = errors.New("input: unsupported format")

// MaxFetchBytes bounds how much of a remote response is read, per spec §6:
// "fetched (bounded size, HTML stripped to plain text)".
const MaxFetchBytes = 10 << 20 // 10 MiB

var urlPattern = regexp.MustCompile(`^https?://`)

// Load resolves textOrURL to its plain-text content, per spec §6:
//   - matches ^https?:// → fetched over HTTP, HTML stripped to text
//   - an existing local file path → parsed by extension
//   - otherwise → returned verbatim as literal text
func Load(ctx context.Context, textOrURL string) (string, error) {
	if urlPattern.MatchString(textOrURL) {
		return loadURL(ctx, textOrURL)
	}
	if info, err := os.Stat(textOrURL); err == nil && !info.IsDir() {
		return loadFile(textOrURL)
	}
	return textOrURL, nil
}

func loadFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return LoadPDF(path)
	case ".xlsx", ".xls":
		return LoadXLSX(path)
	case ".html", ".htm":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Join(ErrUnreadable, err)
		}
		return StripHTML(string(data))
	case ".txt", ".md", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Join(ErrUnreadable, err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Join(ErrUnreadable, err)
		}
		return string(data), nil
	}
}

func loadURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Join(ErrUnreadable, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Join(ErrUnreadable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", errors.Join(ErrUnreadable, errHTTPStatus(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes))
	if err != nil {
		return "", errors.Join(ErrUnreadable, err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return StripHTML(string(body))
	}
	return string(body), nil
}

type errHTTPStatus int

func (e errHTTPStatus) Error() string {
	return fmt.Sprintf("input: unexpected HTTP status %d %s", int(e), http.StatusText(int(e)))
}
