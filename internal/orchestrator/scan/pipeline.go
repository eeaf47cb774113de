// Package scan runs the capture, OCR, translate, overlay pipeline.
package scan

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/corona10/goimagehash"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/cache"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/config"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/metrics"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/overlay"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/screen"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/trace"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/translate"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
)

// TranslatedBox is one piece of screen text with its translation,
// positioned in absolute screen coordinates.
type TranslatedBox struct {
	Text           string  `json:"text"`
	TranslatedText string  `json:"translated_text"`
	Box            ocr.Box `json:"box"`
	Confidence     float64 `json:"confidence"`
}

// Pipeline turns screen frames into translation overlays.
type Pipeline struct {
	capturer   screen.Capturer
	engine     ocr.Engine
	translator translate.Translator
	filter     *ocr.Filter
	cache      *cache.Cache
	overlays   *overlay.Registry
	metrics    *metrics.Metrics

	durations  overlay.Durations
	style      overlay.Style
	sourceLang string
	targetLang string

	skipUnchanged   bool
	maxHashDistance int

	mu        sync.RWMutex
	lastHash  *goimagehash.ImageHash
	lastImage []byte
	lastBoxes []TranslatedBox
}

// New wires a pipeline from configuration and collaborators.
func New(cfg *config.Config, capturer screen.Capturer, engine ocr.Engine, translator translate.Translator, store *cache.Cache, overlays *overlay.Registry, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		capturer:   capturer,
		engine:     engine,
		translator: translator,
		filter:     ocr.NewFilter(cfg.SourceLang, cfg.MinConfidence),
		cache:      store,
		overlays:   overlays,
		metrics:    m,
		durations: overlay.Durations{
			Short:  time.Duration(cfg.DurationShort * float64(time.Second)),
			Medium: time.Duration(cfg.DurationMedium * float64(time.Second)),
			Long:   time.Duration(cfg.DurationLong * float64(time.Second)),
		},
		style:           overlay.Style{FontSize: cfg.FontSize, Opacity: cfg.OverlayAlpha},
		sourceLang:      cfg.SourceLang,
		targetLang:      cfg.TargetLang,
		skipUnchanged:   cfg.SkipUnchanged,
		maxHashDistance: cfg.MaxHashDistance,
	}
}

// Run drives the scan loop until ctx is done or stopCh closes.
// A failed iteration logs, backs off, and the loop continues.
func (p *Pipeline) Run(ctx context.Context, interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				slog.Error("scan iteration failed", "error", err)
				p.metrics.RecordScanError()
				select {
				case <-ctx.Done():
					return
				case <-stopCh:
					return
				case <-time.After(ErrorBackoff):
				}
			}
		}
	}
}

// RunOnce executes a single scan iteration: capture the region, find
// text, and overlay translations. Capture and OCR failures abort the
// iteration; a failure on one detection never blocks the others.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	ctx, _ = trace.EnsureContext(ctx)
	ctx, span := trace.StartSpan(ctx, "scan")
	defer span.End()
	start := time.Now()

	region := p.capturer.Region()
	img, err := p.capturer.Capture()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCaptureFailed, "screen capture failed")
	}

	p.mu.Lock()
	p.lastImage = img
	p.mu.Unlock()

	if p.skipUnchanged && p.shouldSkip(img) {
		p.metrics.RecordFrameSkipped()
		return nil
	}

	detections, err := p.engine.Detect(ctx, img)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.CodeOCRFailed, "%s detection failed", p.engine.Name())
	}
	if len(detections) == 0 {
		trace.Logger(ctx).Debug("no text detected")
		p.metrics.RecordScan(time.Since(start))
		return nil
	}
	p.metrics.RecordDetections(len(detections))
	span.SetAttr("detections", len(detections))

	boxes := make([]TranslatedBox, 0, len(detections))
	for _, d := range detections {
		if box, ok := p.processDetection(ctx, d, region); ok {
			boxes = append(boxes, box)
		}
	}

	p.mu.Lock()
	p.lastBoxes = boxes
	p.mu.Unlock()

	p.metrics.SetOverlaysActive(p.overlays.Count())
	p.metrics.SetCacheEntries(p.cache.Len())
	p.metrics.RecordScan(time.Since(start))
	return nil
}

// processDetection carries one detection through filter, cache,
// translate, and overlay. It reports the translated box when one is
// known for this frame, whether fresh or cached.
func (p *Pipeline) processDetection(ctx context.Context, d ocr.Detection, region screen.Region) (TranslatedBox, bool) {
	if !p.filter.Accept(d) {
		p.metrics.RecordFiltered()
		return TranslatedBox{}, false
	}

	box, ok := d.Quad.Bounds()
	if !ok {
		return TranslatedBox{}, false
	}
	box = box.Offset(region.X, region.Y)

	fp := cache.Fingerprint(d.Text)
	if e, hit := p.cache.Lookup(fp); hit {
		// Already translated and overlaid within the cache lifetime
		p.metrics.RecordCacheHit()
		return TranslatedBox{Text: d.Text, TranslatedText: e.TranslatedText, Box: box, Confidence: d.Confidence}, true
	}
	p.metrics.RecordCacheMiss()

	started := time.Now()
	translated, err := p.translator.Translate(ctx, d.Text, p.sourceLang, p.targetLang)
	if err != nil {
		p.metrics.RecordTranslationError()
		trace.Logger(ctx).Warn("translation failed", "provider", p.translator.Name(), "error", err)
		return TranslatedBox{}, false
	}
	p.metrics.RecordTranslation(time.Since(started))

	duration := p.durations.ForLength(utf8.RuneCountInString(translated))
	if _, err := p.overlays.Create(box, translated, p.style, duration); err != nil {
		// Not cached either, so the next scan retries the whole detection
		trace.Logger(ctx).Warn("overlay creation failed", "error", err)
		return TranslatedBox{}, false
	}
	p.metrics.RecordOverlayCreated()

	p.cache.Insert(fp, cache.Entry{
		SourceText:          d.Text,
		TranslatedText:      translated,
		PositionFingerprint: cache.PositionFingerprint(box.X, box.Y, box.W, box.H),
	})

	return TranslatedBox{Text: d.Text, TranslatedText: translated, Box: box, Confidence: d.Confidence}, true
}

// shouldSkip computes a perceptual hash and reports true when the
// frame is within maxHashDistance of the previous one.
func (p *Pipeline) shouldSkip(imgData []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return false
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastHash == nil {
		p.lastHash = hash
		return false
	}

	dist, err := p.lastHash.Distance(hash)
	if err != nil {
		p.lastHash = hash
		return false
	}

	if dist <= p.maxHashDistance {
		slog.Debug("skipping scan for similar frame", "distance", dist)
		return true
	}

	p.lastHash = hash
	return false
}

// LastScan returns the translated boxes known for the current frame.
func (p *Pipeline) LastScan() []TranslatedBox {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastBoxes
}

// Image returns the latest captured frame.
func (p *Pipeline) Image() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastImage
}
