// Package overlay manages the lifetime of translation overlays shown
// on top of captured text. Rendering itself is delegated to a
// Renderer; the registry owns scheduling and expiry.
package overlay

import "github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"

// MinWrapWidth keeps short detections from wrapping into a vertical
// sliver of text.
const MinWrapWidth = 300

// Style controls how an overlay is drawn.
type Style struct {
	FontSize  int     `json:"font_size"`
	Opacity   float64 `json:"opacity"`
	WrapWidth int     `json:"wrap_width"`
}

// Handle identifies a shown overlay to its renderer. Its concrete
// type is renderer-specific.
type Handle any

// Renderer draws and removes overlays. Implementations must tolerate
// Hide being called for a handle that is already gone.
type Renderer interface {
	Show(pos ocr.Box, text string, style Style) (Handle, error)
	Hide(h Handle) error
}
