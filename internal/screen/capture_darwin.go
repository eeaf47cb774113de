//go:build darwin

package screen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// captureRaw captures the screen on macOS using the native screencapture utility
func (c *capturer) captureRaw(r Region) ([]byte, error) {
	outPath := filepath.Join(c.tempDir, "screenshot.png")

	// -x: no sound, -t png: PNG format
	args := []string{"-x", "-t", "png"}
	if !r.IsZero() {
		args = append(args, "-R", fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H))
	}
	args = append(args, outPath)

	cmd := exec.Command("screencapture", args...)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screencapture failed: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}

	return data, nil
}
