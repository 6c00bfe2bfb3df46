// Package theme owns the site's light/dark mode and accent hue, persisted to
// disk and broadcast to subscribers on every write.
package theme

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Theme modes.
const (
	ModeLight = "light"
	ModeDark  = "dark"
)

// State is the persisted theme configuration.
type State struct {
	Mode string `json:"mode"`
	Hue  int    `json:"hue"`
}

// Store holds the current theme state. Every write is persisted and pushed to
// all subscribers, including writes that do not change the value; deduping
// redundant writes is the consumer's responsibility, matching the
// mutation-observer semantics of the frontend.
type Store struct {
	mu          sync.RWMutex
	state       State
	path        string
	subscribers []chan State
}

// NewStore loads persisted state from configDir/theme.json, falling back to
// light mode with the default hue when the file is absent or unreadable.
func NewStore(configDir string) *Store {
	s := &Store{
		path:  filepath.Join(configDir, "theme.json"),
		state: State{Mode: ModeLight, Hue: 250},
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		var loaded State
		if jsonErr := json.Unmarshal(data, &loaded); jsonErr == nil && (loaded.Mode == ModeLight || loaded.Mode == ModeDark) {
			s.state = loaded
		} else {
			log.Printf("Ignoring malformed theme file %s", s.path)
		}
	}

	return s
}

// Current returns the current theme state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Mode returns just the current mode string.
func (s *Store) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Mode
}

// SetMode sets the light/dark mode, persists, and notifies subscribers.
func (s *Store) SetMode(mode string) error {
	if mode != ModeLight && mode != ModeDark {
		return fmt.Errorf("invalid theme mode: %q", mode)
	}

	s.mu.Lock()
	s.state.Mode = mode
	state := s.state
	s.mu.Unlock()

	s.persist(state)
	s.notify(state)
	return nil
}

// SetHue sets the accent hue, persists, and notifies subscribers.
func (s *Store) SetHue(hue int) error {
	if hue < 0 || hue > 360 {
		return fmt.Errorf("hue out of range: %d", hue)
	}

	s.mu.Lock()
	s.state.Hue = hue
	state := s.state
	s.mu.Unlock()

	s.persist(state)
	s.notify(state)
	return nil
}

// Subscribe registers a buffered channel receiving every state write.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, 8)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown channels
// are ignored.
func (s *Store) Unsubscribe(ch <-chan State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if (<-chan State)(sub) == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

func (s *Store) notify(state State) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Slow subscriber; drop rather than block a setter.
		}
	}
}

func (s *Store) persist(state State) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("ERROR: Failed to marshal theme state: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		log.Printf("ERROR: Failed to create theme config directory: %v", err)
		return
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("ERROR: Failed to persist theme state: %v", err)
	}
}
