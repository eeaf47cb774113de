package overlay

import (
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
)

type entry struct {
	handle    Handle
	text      string
	box       ocr.Box
	expiresAt time.Time
}

// Info describes a live overlay for status and API output.
type Info struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Box       ocr.Box   `json:"box"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Registry tracks shown overlays and retires them on schedule.
// IDs are monotonic; an id is never reused, so late Hide events
// cannot target the wrong overlay.
type Registry struct {
	renderer Renderer

	mu      sync.Mutex
	entries map[int64]entry
	nextID  int64
	now     func() time.Time
}

func NewRegistry(renderer Renderer) *Registry {
	return &Registry{
		renderer: renderer,
		entries:  make(map[int64]entry),
		now:      time.Now,
	}
}

// Create shows text at pos and registers it to expire after
// duration. The render call happens outside the registry lock so a
// slow renderer cannot stall sweeps. A zero WrapWidth defaults to
// the wider of MinWrapWidth and the detection box.
func (r *Registry) Create(pos ocr.Box, text string, style Style, duration time.Duration) (int64, error) {
	if style.WrapWidth == 0 {
		style.WrapWidth = MinWrapWidth
		if pos.W > style.WrapWidth {
			style.WrapWidth = pos.W
		}
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	expiresAt := r.now().Add(duration)
	r.mu.Unlock()

	handle, err := r.renderer.Show(pos, text, style)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeOverlayFailed, "renderer failed to show overlay")
	}

	r.mu.Lock()
	r.entries[id] = entry{handle: handle, text: text, box: pos, expiresAt: expiresAt}
	r.mu.Unlock()

	return id, nil
}

// Sweep retires every overlay whose time is up and returns their
// ids. Entries are removed under the lock before Hide is called, so
// each overlay is hidden exactly once even with overlapping sweeps.
func (r *Registry) Sweep() []int64 {
	now := r.now()

	r.mu.Lock()
	var expired []int64
	var handles []Handle
	for id, e := range r.entries {
		if !now.Before(e.expiresAt) {
			expired = append(expired, id)
			handles = append(handles, e.handle)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for i, h := range handles {
		if err := r.renderer.Hide(h); err != nil {
			slog.Warn("failed to hide expired overlay", "id", expired[i], "error", err)
		}
	}
	return expired
}

// ClearAll removes every overlay immediately and returns how many
// were up.
func (r *Registry) ClearAll() int {
	r.mu.Lock()
	var ids []int64
	var handles []Handle
	for id, e := range r.entries {
		ids = append(ids, id)
		handles = append(handles, e.handle)
		delete(r.entries, id)
	}
	r.mu.Unlock()

	for i, h := range handles {
		if err := r.renderer.Hide(h); err != nil {
			slog.Warn("failed to hide overlay", "id", ids[i], "error", err)
		}
	}
	return len(ids)
}

// Count returns the number of live overlays.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot lists live overlays for status output.
func (r *Registry) Snapshot() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Info, 0, len(r.entries))
	for id, e := range r.entries {
		out = append(out, Info{ID: id, Text: e.text, Box: e.box, ExpiresAt: e.expiresAt})
	}
	return out
}
