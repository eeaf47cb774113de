package overlay

import (
	"sync/atomic"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
)

// Remote renders overlays by publishing events to a Feed; a client
// connected over the websocket does the actual drawing. Handles are
// the wire ids, so Hide translates directly to a hide event.
type Remote struct {
	feed   *Feed
	nextID atomic.Int64
}

func NewRemote(feed *Feed) *Remote {
	return &Remote{feed: feed}
}

func (r *Remote) Show(pos ocr.Box, text string, style Style) (Handle, error) {
	id := r.nextID.Add(1)
	r.feed.Emit(Event{
		Type:      EventShow,
		ID:        id,
		Text:      text,
		X:         pos.X,
		Y:         pos.Y,
		W:         pos.W,
		H:         pos.H,
		FontSize:  style.FontSize,
		Opacity:   style.Opacity,
		WrapWidth: style.WrapWidth,
	})
	return id, nil
}

func (r *Remote) Hide(h Handle) error {
	id, ok := h.(int64)
	if !ok {
		return apperrors.Newf(apperrors.CodeOverlayFailed, "unexpected overlay handle type %T", h)
	}
	r.feed.Emit(Event{Type: EventHide, ID: id})
	return nil
}
