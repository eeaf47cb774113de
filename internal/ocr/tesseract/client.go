// Package tesseract runs OCR locally through libtesseract. It needs
// the native library and language data installed; the paddle provider
// is the default when a serving endpoint is available.
package tesseract

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
)

// Client is an ocr.Engine backed by a local Tesseract instance.
// The underlying gosseract client is not safe for concurrent use,
// so calls are serialized.
type Client struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates a Tesseract engine for the given language, e.g. "jpn".
func New(lang string) (*Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, apperrors.Wrapf(err, apperrors.CodeConfigInvalid, "tesseract language %q not available", lang)
	}
	return &Client{client: client}, nil
}

func (c *Client) Name() string {
	return "tesseract"
}

// Detect recognizes text line by line. Tesseract reports confidence
// in [0, 100]; it is normalized to [0, 1] to match other engines.
func (c *Client) Detect(ctx context.Context, img []byte) ([]ocr.Detection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCancelled, "detect cancelled")
	}

	if err := c.client.SetImageFromBytes(img); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOCRInvalidImage, "tesseract rejected image")
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOCRFailed, "tesseract detection failed")
	}

	detections := make([]ocr.Detection, 0, len(boxes))
	for _, b := range boxes {
		r := b.Box
		detections = append(detections, ocr.Detection{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Quad: ocr.Quad{
				{X: float64(r.Min.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Min.Y)},
				{X: float64(r.Max.X), Y: float64(r.Max.Y)},
				{X: float64(r.Min.X), Y: float64(r.Max.Y)},
			},
		})
	}
	return detections, nil
}

// Close releases the native Tesseract handle.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}
