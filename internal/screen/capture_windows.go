//go:build windows

package screen

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// captureRaw captures the screen on Windows using PowerShell and System.Drawing
func (c *capturer) captureRaw(r Region) ([]byte, error) {
	outPath := filepath.Join(c.tempDir, "screenshot.png")

	var script string
	if r.IsZero() {
		script = fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms
Add-Type -AssemblyName System.Drawing
$bounds = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds
$bmp = New-Object System.Drawing.Bitmap $bounds.Width, $bounds.Height
$graphics = [System.Drawing.Graphics]::FromImage($bmp)
$graphics.CopyFromScreen($bounds.Location, [System.Drawing.Point]::Empty, $bounds.Size)
$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)
$graphics.Dispose()
$bmp.Dispose()
`, outPath)
	} else {
		script = fmt.Sprintf(`
Add-Type -AssemblyName System.Drawing
$bmp = New-Object System.Drawing.Bitmap %d, %d
$graphics = [System.Drawing.Graphics]::FromImage($bmp)
$graphics.CopyFromScreen(%d, %d, 0, 0, $bmp.Size)
$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)
$graphics.Dispose()
$bmp.Dispose()
`, r.W, r.H, r.X, r.Y, outPath)
	}

	cmd := exec.Command("powershell", "-NoProfile", "-Command", script)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("powershell screenshot failed: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}

	return data, nil
}
