package overlay

// EventBuffer bounds the feed so a slow consumer cannot stall the
// scan pipeline. Overflow drops events; clients resync from status.
const EventBuffer = 100

// EventType distinguishes feed events.
type EventType string

const (
	EventShow EventType = "overlay_show"
	EventHide EventType = "overlay_hide"
)

// Event is one overlay state change, shaped for the wire. Geometry
// and style fields are only meaningful for show events.
type Event struct {
	Type      EventType `json:"type"`
	ID        int64     `json:"id"`
	Text      string    `json:"text,omitempty"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	W         int       `json:"w"`
	H         int       `json:"h"`
	FontSize  int       `json:"font_size,omitempty"`
	Opacity   float64   `json:"opacity,omitempty"`
	WrapWidth int       `json:"wrap_width,omitempty"`
}

// Feed fans overlay events out to the control surface.
type Feed struct {
	events chan Event
}

func NewFeed() *Feed {
	return &Feed{events: make(chan Event, EventBuffer)}
}

// Emit sends an event without blocking. Events are dropped when the
// buffer is full.
func (f *Feed) Emit(e Event) {
	select {
	case f.events <- e:
	default:
		// Drop if channel full
	}
}

// Events returns the event channel.
func (f *Feed) Events() <-chan Event {
	return f.events
}
