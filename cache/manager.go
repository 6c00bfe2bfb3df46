// Package cache provides in-memory caching for content fragments, analytics, and icon sets.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/models"
)

var GlobalInstance *Manager

// GetGlobalManager returns the global cache manager instance
func GetGlobalManager() *Manager {
	return GlobalInstance
}

// Manager coordinates the fragment, analytics, and icon caches.
//
// Locking: Manager.Mu guards every map. Methods take the lock themselves;
// none call each other while holding it.
type Manager struct {
	Mu sync.RWMutex

	fragments map[string]*models.Fragment

	stats           *models.SiteStats
	statsComputedAt time.Time

	iconSets map[string]*models.IconSet
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		fragments: make(map[string]*models.Fragment),
		iconSets:  make(map[string]*models.IconSet),
	}
}

// SetFragment stores a fragment, replacing any previous version.
func (m *Manager) SetFragment(f *models.Fragment) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	f.UpdatedAt = time.Now().UTC()
	m.fragments[f.ID] = f
}

// GetFragment retrieves a fragment by ID. Fragments are primary serving data
// owned by the loader, not derived data; they never expire and are only
// replaced by a content reload.
func (m *Manager) GetFragment(id string) (*models.Fragment, bool) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	f, found := m.fragments[id]
	if !found {
		return nil, false
	}
	return f, true
}

// RemoveFragment drops a fragment from the cache.
func (m *Manager) RemoveFragment(id string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	delete(m.fragments, id)
}

// FragmentIDs returns all cached fragment IDs in document order
// (Fragment.Order ascending, then ID for stability).
func (m *Manager) FragmentIDs() []string {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	return m.fragmentIDsUnsafe()
}

// fragmentIDsUnsafe assumes Mu is already held by the caller.
func (m *Manager) fragmentIDsUnsafe() []string {
	ids := make([]string, 0, len(m.fragments))
	for id := range m.fragments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.fragments[ids[i]], m.fragments[ids[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
	return ids
}

// CollectDiagramTargets discovers every diagram slot across all cached
// fragments, in document order. Slots already in a terminal failed state are
// excluded; they are not retried automatically.
func (m *Manager) CollectDiagramTargets() []models.DiagramTarget {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	var targets []models.DiagramTarget
	for _, id := range m.fragmentIDsUnsafe() {
		f := m.fragments[id]
		for i, d := range f.Diagrams {
			if d.State == models.DiagramStateFailed {
				continue
			}
			targets = append(targets, models.DiagramTarget{
				FragmentID: f.ID,
				Index:      i,
				Source:     d.Source,
			})
		}
	}
	return targets
}

// SetDiagramContent rewrites one diagram slot's content and state in place.
func (m *Manager) SetDiagramContent(fragmentID string, index int, content, state string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	f, found := m.fragments[fragmentID]
	if !found || index < 0 || index >= len(f.Diagrams) {
		return
	}
	f.Diagrams[index].Content = content
	f.Diagrams[index].State = state
}

// SetSiteStats stores the analytics snapshot with the current time.
func (m *Manager) SetSiteStats(stats *models.SiteStats) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	m.stats = stats
	m.statsComputedAt = time.Now().UTC()
}

// GetSiteStats retrieves the analytics snapshot if it is still fresh.
func (m *Manager) GetSiteStats() (*models.SiteStats, bool) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	if m.stats == nil {
		return nil, false
	}
	if time.Since(m.statsComputedAt) > config.AnalyticsTTL {
		return nil, false
	}
	return m.stats, true
}

// SetIconSet stores a fetched Iconify set.
func (m *Manager) SetIconSet(set *models.IconSet) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	set.FetchedAt = time.Now().UTC()
	m.iconSets[set.Prefix] = set
}

// GetIconSet retrieves a cached Iconify set if it has not expired.
func (m *Manager) GetIconSet(prefix string) (*models.IconSet, bool) {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	set, found := m.iconSets[prefix]
	if !found {
		return nil, false
	}
	if time.Since(set.FetchedAt) > config.IconSetTTL {
		return nil, false
	}
	return set, true
}
