// Package orchestrator coordinates the scan pipeline and the overlay
// and cache expiry sweepers.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/cache"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/config"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/metrics"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/orchestrator/scan"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/overlay"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/screen"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/trace"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/translate"
)

// Status summarizes the engine for the control surface.
type Status struct {
	Running      bool          `json:"running"`
	Region       screen.Region `json:"region"`
	Overlays     int           `json:"overlays"`
	CacheEntries int           `json:"cache_entries"`
	OCREngine    string        `json:"ocr_engine"`
	Translator   string        `json:"translator"`
}

// Manager owns the scan loop and the two sweepers. Start and Stop
// are idempotent and the manager can be restarted after a stop.
type Manager struct {
	cfg      *config.Config
	capturer screen.Capturer
	cache    *cache.Cache
	overlays *overlay.Registry
	pipeline *scan.Pipeline
	metrics  *metrics.Metrics

	engineName     string
	translatorName string

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	wg      *sync.WaitGroup
}

// New wires the manager from configuration and collaborators.
func New(cfg *config.Config, capturer screen.Capturer, engine ocr.Engine, translator translate.Translator, renderer overlay.Renderer) *Manager {
	store := cache.New(time.Duration(cfg.CacheLifetime * float64(time.Second)))
	overlays := overlay.NewRegistry(renderer)

	return &Manager{
		cfg:            cfg,
		capturer:       capturer,
		cache:          store,
		overlays:       overlays,
		pipeline:       scan.New(cfg, capturer, engine, translator, store, overlays, metrics.Default),
		metrics:        metrics.Default,
		engineName:     engine.Name(),
		translatorName: translator.Name(),
	}
}

// Start launches the scan loop and expiry sweepers. Starting a
// running manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.wg = &sync.WaitGroup{}
	stopCh, wg := m.stopCh, m.wg
	m.mu.Unlock()

	interval := time.Duration(m.cfg.ScanInterval * float64(time.Second))

	wg.Add(3)
	go func() {
		defer wg.Done()
		m.pipeline.Run(ctx, interval, stopCh)
	}()
	go func() {
		defer wg.Done()
		m.overlaySweepLoop(ctx, stopCh)
	}()
	go func() {
		defer wg.Done()
		m.cacheSweepLoop(ctx, stopCh)
	}()

	trace.Logger(ctx).Info("scan started",
		"interval", interval,
		"region", m.capturer.Region().String(),
		"ocr", m.engineName,
		"translator", m.translatorName)
	return nil
}

func (m *Manager) overlaySweepLoop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(m.cfg.OverlaySweepInterval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if expired := m.overlays.Sweep(); len(expired) > 0 {
				m.metrics.RecordOverlaysExpired(len(expired))
				m.metrics.SetOverlaysActive(m.overlays.Count())
			}
		}
	}
}

func (m *Manager) cacheSweepLoop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(m.cfg.CacheSweepInterval * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if removed := m.cache.Sweep(); removed > 0 {
				slog.Debug("cache sweep", "removed", removed)
				m.metrics.RecordCacheEvictions(removed)
				m.metrics.SetCacheEntries(m.cache.Len())
			}
		}
	}
}

// Stop halts the loops, waits briefly for them to drain, then clears
// every overlay and cached translation. Stopping a stopped manager
// is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	wg := m.wg
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(StopGrace):
		slog.Warn("scan loops did not drain in time")
	}

	overlays, entries := m.ClearAll()
	slog.Info("scan stopped", "overlays_cleared", overlays, "cache_cleared", entries)
}

// ClearAll removes all overlays and cached translations immediately.
func (m *Manager) ClearAll() (overlays, entries int) {
	overlays = m.overlays.ClearAll()
	entries = m.cache.Clear()
	m.metrics.SetOverlaysActive(0)
	m.metrics.SetCacheEntries(0)
	return overlays, entries
}

// SetRegion retargets capture. A zero region restores full screen.
func (m *Manager) SetRegion(r screen.Region) error {
	if !r.IsZero() {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	m.capturer.SetRegion(r)
	slog.Info("capture region changed", "region", r.String())
	return nil
}

// Region returns the current capture region.
func (m *Manager) Region() screen.Region {
	return m.capturer.Region()
}

// Status reports the engine state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	running := m.running
	m.mu.RUnlock()

	return Status{
		Running:      running,
		Region:       m.capturer.Region(),
		Overlays:     m.overlays.Count(),
		CacheEntries: m.cache.Len(),
		OCREngine:    m.engineName,
		Translator:   m.translatorName,
	}
}

// LastScan returns the translated boxes from the latest iteration.
func (m *Manager) LastScan() []scan.TranslatedBox {
	return m.pipeline.LastScan()
}

// LatestFrame returns the most recent captured image.
func (m *Manager) LatestFrame() []byte {
	return m.pipeline.Image()
}

// CacheItems returns a copy of the translation cache.
func (m *Manager) CacheItems() map[string]cache.Entry {
	return m.cache.Items()
}

// OverlaySnapshot lists the overlays currently on screen.
func (m *Manager) OverlaySnapshot() []overlay.Info {
	return m.overlays.Snapshot()
}
