// Package diagrams renders Mermaid diagram blocks found in cached content
// fragments, re-rendering them whenever the site theme flips.
package diagrams

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/yuma-shin/y-shin.net/config"
	"github.com/yuma-shin/y-shin.net/models"
	"github.com/yuma-shin/y-shin.net/theme"
	"github.com/yuma-shin/y-shin.net/utils"
)

// TargetStore is the fragment cache surface the coordinator renders into.
type TargetStore interface {
	CollectDiagramTargets() []models.DiagramTarget
	SetDiagramContent(fragmentID string, index int, content, state string)
}

// PassListener is notified after each completed render pass.
type PassListener func(passID string, rendered, failed int)

// Coordinator serializes diagram render passes. At most one pass mutates
// fragment content at a time; triggers arriving during a busy pass are
// dropped, not queued. The theme snapshot taken at pass start is
// authoritative for the whole pass.
type Coordinator struct {
	engine    Engine
	store     TargetStore
	themeMode func() string

	// OnPassComplete, when set before Start, receives pass results.
	OnPassComplete PassListener

	mu           sync.Mutex
	started      bool
	isRendering  bool
	currentTheme string // last theme seen by the detector; "" forces re-evaluation
	initAttempts int

	settleDelay    time.Duration
	renderAttempts int
	renderBackoff  time.Duration
	initRetries    int
	initBackoff    time.Duration

	// Injectable timing hooks.
	sleep    func(time.Duration)
	schedule func(time.Duration, func())
}

// NewCoordinator creates a coordinator over the given engine and fragment
// store. themeMode reports the current site theme mode.
func NewCoordinator(engine Engine, store TargetStore, themeMode func() string) *Coordinator {
	return &Coordinator{
		engine:         engine,
		store:          store,
		themeMode:      themeMode,
		settleDelay:    config.ThemeSettleDelay,
		renderAttempts: config.DiagramRenderAttempts,
		renderBackoff:  config.DiagramRenderBackoff,
		initRetries:    config.DiagramInitRetries,
		initBackoff:    config.DiagramInitBackoff,
		sleep:          time.Sleep,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Start launches the bootstrap-and-render sequence in the background.
// Calling Start more than once is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		log.Printf("Diagram coordinator already started, ignoring duplicate Start")
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.runWithRetry(c.bootstrapAndRender)
}

// TriggerRender requests a render pass. If a pass is already in flight the
// request is dropped.
func (c *Coordinator) TriggerRender() {
	go c.runWithRetry(c.renderPass)
}

// OnThemeMutation is invoked for every theme state write. Redundant writes
// (mode unchanged) are ignored; an actual flip schedules a re-render after
// the settling delay so CSS transitions finish first.
func (c *Coordinator) OnThemeMutation(mode string) {
	c.mu.Lock()
	if c.currentTheme == mode {
		c.mu.Unlock()
		return
	}
	c.currentTheme = mode
	c.mu.Unlock()

	log.Printf("Theme changed to %s, scheduling diagram re-render in %v", mode, c.settleDelay)
	c.schedule(c.settleDelay, c.TriggerRender)
}

// OnContentReplaced is invoked when fragments were rebuilt. The last-known
// theme is reset so the next theme write always re-evaluates, and a pass is
// triggered for the new content.
func (c *Coordinator) OnContentReplaced() {
	c.mu.Lock()
	c.currentTheme = ""
	c.mu.Unlock()

	c.TriggerRender()
}

// OnResume is invoked when the process resumes from a suspended state. Only
// re-arms the detector; the theme may have changed while suspended without a
// mutation being observed.
func (c *Coordinator) OnResume() {
	c.mu.Lock()
	c.currentTheme = ""
	c.mu.Unlock()
}

// runWithRetry executes op; on failure it re-runs the full bootstrap+render
// sequence with linear backoff until the shared initialization budget is
// exhausted, then gives up with only a log trace.
func (c *Coordinator) runWithRetry(op func() error) {
	err := op()
	for err != nil {
		c.mu.Lock()
		c.initAttempts++
		attempt := c.initAttempts
		c.mu.Unlock()

		if attempt > c.initRetries {
			log.Printf("Diagram rendering disabled after exhausting %d initialization retries: %v", c.initRetries, err)
			return
		}

		backoff := time.Duration(attempt) * c.initBackoff
		log.Printf("Diagram initialization failed (retry %d/%d in %v): %v", attempt, c.initRetries, backoff, err)
		c.sleep(backoff)
		err = c.bootstrapAndRender()
	}
}

func (c *Coordinator) bootstrapAndRender() error {
	if err := c.engine.Initialize(context.Background()); err != nil {
		return err
	}
	return c.renderPass()
}

// renderPass runs one complete discover-and-render cycle. Returns an error
// only for pass-level failures outside per-target handling; individual
// target failures are terminal per target and do not abort the pass.
func (c *Coordinator) renderPass() error {
	c.mu.Lock()
	if c.isRendering {
		c.mu.Unlock()
		log.Printf("Render pass already in progress, dropping trigger")
		return nil
	}
	c.isRendering = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.isRendering = false
		c.mu.Unlock()
	}()

	// The theme snapshot is authoritative for the whole pass, even if the
	// store changes mid-pass.
	mode := c.themeMode()

	targets := c.store.CollectDiagramTargets()
	if len(targets) == 0 {
		return nil
	}

	passID := utils.GenerateULID()
	log.Printf("Render pass %s: %d diagrams, theme=%s", passID, len(targets), mode)

	if err := c.engine.SetTheme(context.Background(), engineTheme(mode)); err != nil {
		return fmt.Errorf("pass %s: %w", passID, err)
	}

	var wg sync.WaitGroup
	var statsMu sync.Mutex
	rendered, failed := 0, 0

	for _, t := range targets {
		wg.Add(1)
		go func(t models.DiagramTarget) {
			defer wg.Done()
			if err := c.renderTarget(t, mode); err != nil {
				log.Printf("Render pass %s: %v", passID, err)
				statsMu.Lock()
				failed++
				statsMu.Unlock()
				return
			}
			statsMu.Lock()
			rendered++
			statsMu.Unlock()
		}(t)
	}
	wg.Wait()

	log.Printf("Render pass %s complete: %d rendered, %d failed", passID, rendered, failed)
	if c.OnPassComplete != nil {
		c.OnPassComplete(passID, rendered, failed)
	}
	return nil
}

// renderTarget renders one diagram slot with bounded retries. Before every
// attempt the slot shows a transient placeholder; exhausting all attempts
// leaves a terminal inline error with a manual reload control.
func (c *Coordinator) renderTarget(t models.DiagramTarget, mode string) error {
	id := fmt.Sprintf("diagram-%s-%d", t.FragmentID, t.Index)

	var lastErr error
	for attempt := 1; attempt <= c.renderAttempts; attempt++ {
		c.store.SetDiagramContent(t.FragmentID, t.Index, placeholderHTML, models.DiagramStateRendering)

		svg, err := c.engine.Render(context.Background(), id, t.Source)
		if err == nil {
			c.store.SetDiagramContent(t.FragmentID, t.Index, wrapRendered(svg, mode), models.DiagramStateRendered)
			return nil
		}

		lastErr = err
		log.Printf("Diagram %s attempt %d/%d failed: %v", id, attempt, c.renderAttempts, err)
		if attempt < c.renderAttempts {
			c.sleep(time.Duration(attempt) * c.renderBackoff)
		}
	}

	c.store.SetDiagramContent(t.FragmentID, t.Index, errorHTML, models.DiagramStateFailed)
	return &TargetRenderError{FragmentID: t.FragmentID, Index: t.Index, Attempts: c.renderAttempts, Err: lastErr}
}

func engineTheme(mode string) string {
	if mode == theme.ModeDark {
		return EngineThemeDark
	}
	return EngineThemeDefault
}

const placeholderHTML = `<div class="diagram-block rendering"><span class="diagram-spinner"></span>Rendering diagram...</div>`

const errorHTML = `<div class="diagram-block error">Diagram failed to render. <button class="diagram-reload" onclick="window.location.reload()">Reload page</button></div>`

var svgWidthRe = regexp.MustCompile(`(<svg[^>]*?)\swidth="[^"]*"`)

// wrapRendered normalizes the SVG for responsive layout and applies the
// dark-mode adjustment class uniformly from the pass's theme snapshot.
func wrapRendered(svg, mode string) string {
	svg = svgWidthRe.ReplaceAllString(svg, `$1 width="100%"`)
	class := "diagram-block rendered"
	if mode == theme.ModeDark {
		class += " diagram-dark"
	}
	return fmt.Sprintf(`<div class="%s" style="max-width:100%%">%s</div>`, class, svg)
}
