package overlay

import "time"

// Durations maps translated text length to how long its overlay
// stays up. Longer text needs more reading time.
type Durations struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// ForLength picks the duration band for a text of runeCount runes.
// Bands: under 15 short, under 30 medium, otherwise long.
func (d Durations) ForLength(runeCount int) time.Duration {
	switch {
	case runeCount < 15:
		return d.Short
	case runeCount < 30:
		return d.Medium
	default:
		return d.Long
	}
}
