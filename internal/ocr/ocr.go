// Package ocr defines the text detection contract and the geometry
// shared by OCR providers and the scan pipeline.
package ocr

import "context"

// Point is one corner of a detected text quadrilateral, in pixels
// relative to the captured image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is the four-corner polygon an OCR engine reports around a
// text line. Order is not guaranteed.
type Quad []Point

// Detection is a single piece of recognized text with its location
// and the engine's confidence in [0, 1].
type Detection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Quad       Quad    `json:"quad"`
}

// Box is an axis-aligned bounding rectangle in screen pixels.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Bounds collapses the quad to its axis-aligned bounding box.
// Reports ok=false for an empty quad.
func (q Quad) Bounds() (Box, bool) {
	if len(q) == 0 {
		return Box{}, false
	}
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Box{
		X: int(minX),
		Y: int(minY),
		W: int(maxX - minX),
		H: int(maxY - minY),
	}, true
}

// Offset shifts the box by (dx, dy). Used to map region-relative
// detections back to absolute screen coordinates.
func (b Box) Offset(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Engine recognizes text in an encoded image.
type Engine interface {
	// Detect returns all text found in img (PNG or JPEG bytes).
	Detect(ctx context.Context, img []byte) ([]Detection, error)
	// Name identifies the provider for logs and status output.
	Name() string
}
