package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yuma-shin/y-shin.net/cache"
	"github.com/yuma-shin/y-shin.net/models"
)

// statsWindow is how far back the aggregate stats reach.
const statsWindow = 30 * 24 * time.Hour

const umamiTokenName = "umami"

// Service serves site statistics: fresh from cache, otherwise fetched from
// Umami, otherwise the last persisted snapshot.
type Service struct {
	client *UmamiClient
	cache  *cache.Manager
	store  *Store
}

// NewService wires the Umami client to the cache and snapshot store. store
// may be nil, disabling persistence. A persisted bearer token is reused so
// restarts skip the initial login.
func NewService(client *UmamiClient, cacheManager *cache.Manager, store *Store) *Service {
	s := &Service{client: client, cache: cacheManager, store: store}

	if store != nil {
		if token, err := store.LoadToken(umamiTokenName); err == nil && token != "" {
			client.SetToken(token)
		}
	}
	return s
}

// GetSiteStats returns the 30-day aggregate statistics.
func (s *Service) GetSiteStats(ctx context.Context) (*models.SiteStats, error) {
	if stats, found := s.cache.GetSiteStats(); found {
		return stats, nil
	}

	now := time.Now().UTC()
	stats, err := s.client.FetchStats(ctx, now.Add(-statsWindow), now)
	if err != nil {
		log.Printf("Umami fetch failed, falling back to persisted snapshot: %v", err)
		return s.staleStats(err)
	}

	s.cache.SetSiteStats(stats)

	if s.store != nil {
		if err := s.store.SaveSnapshot(stats); err != nil {
			log.Printf("ERROR: Failed to persist analytics snapshot: %v", err)
		}
		if token := s.client.Token(); token != "" {
			if err := s.store.SaveToken(umamiTokenName, token); err != nil {
				log.Printf("ERROR: Failed to persist umami token: %v", err)
			}
		}
	}

	return stats, nil
}

// staleStats serves the last persisted snapshot when the upstream API is
// unavailable.
func (s *Service) staleStats(fetchErr error) (*models.SiteStats, error) {
	if s.store == nil {
		return nil, fetchErr
	}

	snap, err := s.store.LatestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("umami unavailable and no snapshot on record: %w", fetchErr)
	}

	log.Printf("Serving stale analytics snapshot from %s", snap.CapturedAt.Format(time.RFC3339))
	return &snap.Stats, nil
}

// GetPageviews returns the daily pageview series for the stats window.
func (s *Service) GetPageviews(ctx context.Context) ([]models.PageviewPoint, error) {
	now := time.Now().UTC()
	return s.client.FetchPageviews(ctx, now.Add(-statsWindow), now)
}
