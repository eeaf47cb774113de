//go:build linux

package screen

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// captureRaw captures the screen on Linux, trying available tools in order
func (c *capturer) captureRaw(r Region) ([]byte, error) {
	outPath := filepath.Join(c.tempDir, "screenshot.png")

	// Try scrot first (most common)
	if _, err := exec.LookPath("scrot"); err == nil {
		args := []string{"--overwrite"}
		if !r.IsZero() {
			args = append(args, "-a", fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.W, r.H))
		}
		args = append(args, outPath)
		cmd := exec.Command("scrot", args...)
		if err := cmd.Run(); err == nil {
			return os.ReadFile(outPath)
		}
	}

	// Try ImageMagick's import
	if _, err := exec.LookPath("import"); err == nil {
		args := []string{"-window", "root"}
		if !r.IsZero() {
			args = append(args, "-crop", fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y))
		}
		args = append(args, outPath)
		cmd := exec.Command("import", args...)
		if err := cmd.Run(); err == nil {
			return os.ReadFile(outPath)
		}
	}

	// Try gnome-screenshot (full screen only)
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		if !r.IsZero() {
			slog.Warn("gnome-screenshot cannot capture a region, falling back to full screen")
		}
		cmd := exec.Command("gnome-screenshot", "-f", outPath)
		if err := cmd.Run(); err == nil {
			return os.ReadFile(outPath)
		}
	}

	return nil, fmt.Errorf("no screenshot tool available (install scrot, imagemagick, or gnome-screenshot)")
}
