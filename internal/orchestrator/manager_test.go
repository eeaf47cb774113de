package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/config"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/overlay"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/screen"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
)

type fakeCapturer struct {
	mu     sync.Mutex
	region screen.Region
	calls  int
}

func (f *fakeCapturer) Capture() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return []byte("frame"), nil
}

func (f *fakeCapturer) SetRegion(r screen.Region) {
	f.mu.Lock()
	f.region = r
	f.mu.Unlock()
}

func (f *fakeCapturer) Region() screen.Region {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.region
}

func (f *fakeCapturer) Close() {}

func (f *fakeCapturer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeEngine struct {
	mu         sync.Mutex
	detections []ocr.Detection
}

func (f *fakeEngine) Detect(ctx context.Context, img []byte) ([]ocr.Detection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detections, nil
}

func (f *fakeEngine) Name() string { return "fake-ocr" }

type fakeTranslator struct{}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return "Hello", nil
}

func (f *fakeTranslator) Name() string { return "fake-translate" }

type nullRenderer struct {
	mu    sync.Mutex
	next  int64
	hides int
}

func (r *nullRenderer) Show(pos ocr.Box, text string, style overlay.Style) (overlay.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	return r.next, nil
}

func (r *nullRenderer) Hide(h overlay.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SourceLang:           "ja",
		TargetLang:           "en",
		ScanInterval:         0.005,
		MinConfidence:        0.53,
		FontSize:             8,
		OverlayAlpha:         0.75,
		DurationShort:        0.05,
		DurationMedium:       0.08,
		DurationLong:         0.1,
		CacheLifetime:        20.0,
		OverlaySweepInterval: 0.01,
		CacheSweepInterval:   0.01,
		MaxHashDistance:      5,
	}
}

func helloDetection() []ocr.Detection {
	return []ocr.Detection{{
		Text:       "こんにちは",
		Confidence: 0.98,
		Quad:       ocr.Quad{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 30}, {X: 10, Y: 30}},
	}}
}

func newTestManager(detections []ocr.Detection) (*Manager, *fakeCapturer) {
	capturer := &fakeCapturer{}
	m := New(testConfig(), capturer, &fakeEngine{detections: detections}, &fakeTranslator{}, &nullRenderer{})
	return m, capturer
}

func waitFor(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestStartScansAndStopClears(t *testing.T) {
	m, capturer := newTestManager(helloDetection())

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !m.Status().Running {
		t.Error("Status().Running = false after Start")
	}

	waitFor(t, 2*time.Second, "first scan", func() bool {
		return capturer.callCount() > 0 && m.Status().CacheEntries == 1
	})

	m.Stop()

	st := m.Status()
	if st.Running {
		t.Error("Status().Running = true after Stop")
	}
	if st.Overlays != 0 {
		t.Errorf("overlays = %d after Stop, want 0", st.Overlays)
	}
	if st.CacheEntries != 0 {
		t.Errorf("cache entries = %d after Stop, want 0", st.CacheEntries)
	}

	// No new scans once stopped
	calls := capturer.callCount()
	time.Sleep(50 * time.Millisecond)
	if capturer.callCount() != calls {
		t.Error("scan loop still ticking after Stop")
	}
}

func TestStartIdempotent(t *testing.T) {
	m, _ := newTestManager(nil)
	defer m.Stop()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if !m.Status().Running {
		t.Error("manager should be running")
	}
}

func TestStopIdempotent(t *testing.T) {
	m, _ := newTestManager(nil)

	// Stop before any Start is a no-op
	m.Stop()

	m.Start(context.Background())
	m.Stop()
	m.Stop()

	if m.Status().Running {
		t.Error("manager should be stopped")
	}
}

func TestRestart(t *testing.T) {
	m, capturer := newTestManager(nil)

	m.Start(context.Background())
	waitFor(t, 2*time.Second, "scan activity", func() bool { return capturer.callCount() > 0 })
	m.Stop()

	calls := capturer.callCount()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	defer m.Stop()

	waitFor(t, 2*time.Second, "scan activity after restart", func() bool {
		return capturer.callCount() > calls
	})
}

func TestSweeperExpiresOverlays(t *testing.T) {
	m, _ := newTestManager(helloDetection())

	m.Start(context.Background())
	defer m.Stop()

	// The scan creates one overlay with a 50ms lifetime
	waitFor(t, 2*time.Second, "overlay creation", func() bool {
		return m.Status().Overlays == 1
	})

	// The 10ms sweeper retires it; the cache entry outlives it, so
	// no replacement appears.
	waitFor(t, 2*time.Second, "overlay expiry", func() bool {
		return m.Status().Overlays == 0
	})

	if m.Status().CacheEntries != 1 {
		t.Errorf("cache entries = %d, want 1 (expiry must not touch the cache)", m.Status().CacheEntries)
	}
}

func TestSetRegion(t *testing.T) {
	m, capturer := newTestManager(nil)

	if err := m.SetRegion(screen.Region{X: 10, Y: 10, W: 40, H: 40}); err == nil {
		t.Error("expected error for undersized region")
	} else if !apperrors.IsCode(err, apperrors.CodeRegionInvalid) {
		t.Errorf("error code = %s, want %s", apperrors.CodeOf(err), apperrors.CodeRegionInvalid)
	}

	r := screen.Region{X: 10, Y: 10, W: 640, H: 480}
	if err := m.SetRegion(r); err != nil {
		t.Fatalf("SetRegion() error = %v", err)
	}
	if capturer.Region() != r {
		t.Errorf("capturer region = %+v, want %+v", capturer.Region(), r)
	}

	// Zero region resets to full screen without validation
	if err := m.SetRegion(screen.Region{}); err != nil {
		t.Fatalf("SetRegion(zero) error = %v", err)
	}
	if !capturer.Region().IsZero() {
		t.Error("capturer region should be full screen")
	}
}

func TestStatusNames(t *testing.T) {
	m, _ := newTestManager(nil)
	st := m.Status()
	if st.OCREngine != "fake-ocr" {
		t.Errorf("OCREngine = %q", st.OCREngine)
	}
	if st.Translator != "fake-translate" {
		t.Errorf("Translator = %q", st.Translator)
	}
}

func TestClearAllCounts(t *testing.T) {
	m, _ := newTestManager(helloDetection())

	m.Start(context.Background())
	waitFor(t, 2*time.Second, "scan output", func() bool {
		st := m.Status()
		return st.Overlays == 1 && st.CacheEntries == 1
	})

	overlays, entries := m.ClearAll()
	if overlays != 1 || entries != 1 {
		t.Errorf("ClearAll() = (%d, %d), want (1, 1)", overlays, entries)
	}
	m.Stop()
}
