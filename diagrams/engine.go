package diagrams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
)

// Engine abstracts the Mermaid-compatible rendering backend.
type Engine interface {
	// Initialize makes the backend ready for rendering. Idempotent.
	Initialize(ctx context.Context) error
	// SetTheme reconfigures the backend's theme variables, applied to every
	// subsequent Render call. Called once per render pass.
	SetTheme(ctx context.Context, theme string) error
	// Render converts one diagram definition into SVG markup.
	Render(ctx context.Context, id, source string) (string, error)
}

// Engine theme names, mirroring Mermaid's own.
const (
	EngineThemeDefault = "default"
	EngineThemeDark    = "dark"
)

// engineConfig is the one-time baseline configuration posted after load.
type engineConfig struct {
	StartOnLoad   bool   `json:"startOnLoad"`
	Theme         string `json:"theme"`
	SecurityLevel string `json:"securityLevel"`
	LogLevel      string `json:"logLevel"`
}

// renderRequest is the per-diagram render call payload.
type renderRequest struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Theme  string `json:"theme"`
}

// ServiceEngine renders diagrams through an HTTP rendering service, trying a
// primary endpoint and falling back to a secondary one at load time.
type ServiceEngine struct {
	primaryURL  string
	fallbackURL string

	// No request timeout is configured for the load probe. If the transport
	// hangs without ever failing, initialization stalls with it.
	client *http.Client

	mu      sync.Mutex
	loaded  bool
	baseURL string
	theme   string
}

// NewServiceEngine creates an engine targeting the given endpoints.
func NewServiceEngine(primaryURL, fallbackURL string) *ServiceEngine {
	return &ServiceEngine{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		client:      &http.Client{},
		theme:       EngineThemeDefault,
	}
}

// Initialize probes the primary endpoint, then the fallback, and applies the
// baseline configuration once. Subsequent calls are no-ops.
func (e *ServiceEngine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	baseURL := e.primaryURL
	if err := e.probe(ctx, baseURL); err != nil {
		log.Printf("Primary diagram service %s unavailable, trying fallback: %v", baseURL, err)
		baseURL = e.fallbackURL
		if fbErr := e.probe(ctx, baseURL); fbErr != nil {
			return fmt.Errorf("%w: primary: %v, fallback: %v", ErrLibraryLoad, err, fbErr)
		}
	}

	if err := e.configure(ctx, baseURL); err != nil {
		return fmt.Errorf("%w: configure: %v", ErrLibraryLoad, err)
	}

	e.baseURL = baseURL
	e.loaded = true
	log.Printf("Diagram render service ready at %s", baseURL)
	return nil
}

func (e *ServiceEngine) probe(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (e *ServiceEngine) configure(ctx context.Context, baseURL string) error {
	cfg := engineConfig{
		StartOnLoad:   false,
		Theme:         EngineThemeDefault,
		SecurityLevel: "loose",
		LogLevel:      "warn",
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/configure", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("configure returned %d", resp.StatusCode)
	}
	return nil
}

// SetTheme updates the theme applied to subsequent renders.
func (e *ServiceEngine) SetTheme(ctx context.Context, theme string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return fmt.Errorf("%w: engine not initialized", ErrLibraryLoad)
	}
	e.theme = theme
	return nil
}

// Render posts one diagram definition and returns the SVG markup.
func (e *ServiceEngine) Render(ctx context.Context, id, source string) (string, error) {
	e.mu.Lock()
	baseURL, theme, loaded := e.baseURL, e.theme, e.loaded
	e.mu.Unlock()

	if !loaded {
		return "", fmt.Errorf("%w: engine not initialized", ErrLibraryLoad)
	}

	body, err := json.Marshal(renderRequest{ID: id, Source: source, Theme: theme})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	svg, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render returned %d: %s", resp.StatusCode, truncate(string(svg), 200))
	}
	return string(svg), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
