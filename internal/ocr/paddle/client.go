// Package paddle talks to a PaddleOCR-serving HTTP endpoint.
package paddle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/resilience"
)

const requestTimeout = 30 * time.Second

// Client is an ocr.Engine backed by a PaddleOCR serving instance.
type Client struct {
	addr       string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// New creates a client for the PaddleOCR endpoint at addr,
// e.g. "http://localhost:8866/predict/ocr_system".
func New(addr string) *Client {
	return &Client{
		addr:       addr,
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    resilience.New(resilience.OCRConfig()),
	}
}

func (c *Client) Name() string {
	return "paddle"
}

type request struct {
	Images []string `json:"images"`
}

type response struct {
	Msg     string       `json:"msg"`
	Status  string       `json:"status"`
	Results [][]lineItem `json:"results"`
}

type lineItem struct {
	Text       string       `json:"text"`
	Confidence float64      `json:"confidence"`
	TextRegion [][2]float64 `json:"text_region"`
}

// Detect sends img through the serving API and maps each recognized
// line to a Detection. There is no retry here: the scan loop ticks
// again shortly, and the breaker keeps a dead service from being
// hammered in the meantime.
func (c *Client) Detect(ctx context.Context, img []byte) ([]ocr.Detection, error) {
	return resilience.ExecuteWithResult(c.breaker, func() ([]ocr.Detection, error) {
		return c.detect(ctx, img)
	})
}

func (c *Client) detect(ctx context.Context, img []byte) ([]ocr.Detection, error) {
	body, err := json.Marshal(request{
		Images: []string{base64.StdEncoding.EncodeToString(img)},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode OCR request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addr, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build OCR request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "OCR service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apperrors.Newf(apperrors.CodeOCRFailed, "OCR service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOCRFailed, "failed to decode OCR response")
	}
	if parsed.Status != "000" {
		return nil, apperrors.Newf(apperrors.CodeOCRFailed, "OCR service status %s: %s", parsed.Status, parsed.Msg)
	}

	var detections []ocr.Detection
	for _, page := range parsed.Results {
		for _, line := range page {
			quad := make(ocr.Quad, 0, len(line.TextRegion))
			for _, p := range line.TextRegion {
				quad = append(quad, ocr.Point{X: p[0], Y: p[1]})
			}
			detections = append(detections, ocr.Detection{
				Text:       line.Text,
				Confidence: line.Confidence,
				Quad:       quad,
			})
		}
	}
	return detections, nil
}
