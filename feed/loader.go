package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/logging"
)

// Compile-time check to ensure Loader implements the FeedLoader interface
var _ interfaces.FeedLoader = (*Loader)(nil)

// Loader reads the product feed from a URL or a local path.
type Loader struct {
	source string
	client *http.Client
}

// NewLoader creates a loader for the given source.
func NewLoader(source string) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: downloadTimeout},
	}
}

// Source returns where the loader reads from.
func (l *Loader) Source() string {
	return l.source
}

// Load fetches, decodes and parses the feed.
func (l *Loader) Load(ctx context.Context) ([]catalog.Product, error) {
	if l.source == "" {
		return nil, fmt.Errorf("no feed source configured")
	}

	body, err := fetch(ctx, l.client, l.source)
	if err != nil {
		return nil, err
	}

	products, stats, err := Parse(decode(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", l.source, err)
	}

	logging.Info("Feed loaded", "source", l.source, "products", stats.Parsed)
	return products, nil
}
