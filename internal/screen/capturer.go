// Package screen captures screen content for the scan pipeline.
// Platform backends shell out to native screenshot tools and are
// selected at build time.
package screen

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/syncx"
)

// MinRegionSize is the smallest acceptable width and height for a
// capture region. Anything smaller produces OCR noise, not text.
const MinRegionSize = 50

// Region is a rectangular screen area in pixels. The zero value
// means the entire screen.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ParseRegion parses "x,y,w,h" into a Region.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, apperrors.Newf(apperrors.CodeRegionInvalid, "region must be x,y,w,h, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, apperrors.Newf(apperrors.CodeRegionInvalid, "region component %q is not an integer", p)
		}
		vals[i] = n
	}
	return Region{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}

// IsZero reports whether the region denotes the full screen.
func (r Region) IsZero() bool {
	return r == Region{}
}

// Validate rejects regions too small to carry readable text.
func (r Region) Validate() error {
	if r.W < MinRegionSize || r.H < MinRegionSize {
		return apperrors.Newf(apperrors.CodeRegionInvalid, "region too small: %dx%d (minimum %dx%d)", r.W, r.H, MinRegionSize, MinRegionSize)
	}
	return nil
}

func (r Region) String() string {
	if r.IsZero() {
		return "full screen"
	}
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H)
}

// Capturer grabs screen frames as PNG bytes.
type Capturer interface {
	// Capture returns the current frame of the configured region.
	Capture() ([]byte, error)
	// SetRegion narrows subsequent captures to r. A zero region
	// restores full-screen capture.
	SetRegion(r Region)
	// Region returns the currently configured capture region.
	Region() Region
	// Close releases capture resources.
	Close()
}

// capturer is the platform-backed Capturer. The region guard lets the
// control surface retarget capture while the scan loop is running.
type capturer struct {
	region  *syncx.RWGuard[Region]
	tempDir string
}

// New creates a platform screen capturer.
func New() (Capturer, error) {
	tempDir, err := os.MkdirTemp("", "screencap")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCaptureFailed, "failed to create temp dir")
	}
	return &capturer{
		region:  syncx.NewGuard(Region{}),
		tempDir: tempDir,
	}, nil
}

func (c *capturer) Capture() ([]byte, error) {
	return c.captureRaw(c.region.Get())
}

func (c *capturer) SetRegion(r Region) {
	c.region.Set(r)
}

func (c *capturer) Region() Region {
	return c.region.Get()
}

func (c *capturer) Close() {
	os.RemoveAll(c.tempDir)
}
