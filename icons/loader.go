// Package icons fetches and caches Iconify icon sets.
package icons

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/models"
)

// Loader fetches icon-set JSON from the Iconify API. Unlike the diagram
// bootstrap, every request carries a hard timeout and a bounded retry budget.
type Loader struct {
	apiURL  string
	client  *http.Client
	cache   *cache.Manager
	retries int
	sleep   func(time.Duration)
}

// NewLoader creates a loader backed by the shared cache manager.
func NewLoader(cacheManager *cache.Manager) *Loader {
	return &Loader{
		apiURL:  config.IconifyAPIURL,
		client:  &http.Client{Timeout: config.IconFetchTimeout},
		cache:   cacheManager,
		retries: config.IconFetchRetries,
		sleep:   time.Sleep,
	}
}

// GetSet returns the icon set for the given prefix, serving from cache when
// fresh and fetching otherwise.
func (l *Loader) GetSet(ctx context.Context, prefix string) (*models.IconSet, error) {
	if set, found := l.cache.GetIconSet(prefix); found {
		return set, nil
	}

	payload, err := l.fetch(ctx, prefix)
	if err != nil {
		return nil, err
	}

	set := &models.IconSet{Prefix: prefix, Payload: payload}
	l.cache.SetIconSet(set)
	return set, nil
}

// fetch retrieves the set with up to retries+1 attempts and a fixed backoff
// between them.
func (l *Loader) fetch(ctx context.Context, prefix string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s.json", l.apiURL, prefix)

	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		if attempt > 0 {
			l.sleep(time.Second)
			log.Printf("Retrying icon set %s (attempt %d/%d)", prefix, attempt+1, l.retries+1)
		}

		payload, err := l.fetchOnce(ctx, url)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to fetch icon set %s: %w", prefix, lastErr)
}

func (l *Loader) fetchOnce(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iconify API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("iconify API returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
