// Package cache utility functions for TTL cleanup.
package cache

import (
	"log"
	"time"

	"github.com/yuma-shin/y-shin.net/config"
)

// StartCleanupRoutine starts the background cache cleanup process
func StartCleanupRoutine(manager *Manager) {
	go func() {
		ticker := time.NewTicker(config.CleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			performCleanup(manager)
		}
	}()

	log.Printf("Cache cleanup routine started (interval: %v)", config.CleanupInterval)
}

// performCleanup removes expired entries from the derived-data caches.
// Fragments are excluded: they are the serving copy of the on-disk content
// and only a reload may replace them.
func performCleanup(manager *Manager) {
	now := time.Now().UTC()
	removed := 0

	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for prefix, set := range manager.iconSets {
		if now.Sub(set.FetchedAt) > config.IconSetTTL {
			delete(manager.iconSets, prefix)
			removed++
		}
	}

	if manager.stats != nil && now.Sub(manager.statsComputedAt) > config.AnalyticsTTL {
		manager.stats = nil
		removed++
	}

	if removed > 0 {
		log.Printf("Cache cleanup removed %d expired entries", removed)
	}
}
