// Package feed downloads and parses the product feed the catalog is built from.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giygas/minsan-api/logging"
	"golang.org/x/text/encoding/charmap"
)

const downloadTimeout = 5 * time.Minute

// fetch returns the raw feed, from HTTP(S) when source is a URL and from the
// local filesystem otherwise.
func fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return download(ctx, client, source)
	}

	cleanPath := filepath.Clean(source)
	body, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file %s: %w", cleanPath, err)
	}
	return body, nil
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %d", url, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logging.Debug("Feed downloaded", "url", url, "bytes", len(body))
	return body, nil
}

// decode returns a UTF-8 reader over the feed. Suppliers export either UTF-8
// or ISO-8859-1.
func decode(body []byte) io.Reader {
	if utf8.Valid(body) {
		return bytes.NewReader(body)
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(body))
}
