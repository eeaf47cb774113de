package overlay

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestForLength(t *testing.T) {
	d := Durations{
		Short:  2 * time.Second,
		Medium: 3 * time.Second,
		Long:   4 * time.Second,
	}

	tests := []struct {
		runes int
		want  time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{14, 2 * time.Second},
		{15, 3 * time.Second},
		{29, 3 * time.Second},
		{30, 4 * time.Second},
		{31, 4 * time.Second},
		{100, 4 * time.Second},
	}

	for _, tt := range tests {
		if got := d.ForLength(tt.runes); got != tt.want {
			t.Errorf("ForLength(%d) = %v, want %v", tt.runes, got, tt.want)
		}
	}
}

func TestForLengthCountsRunes(t *testing.T) {
	d := Durations{Short: 2 * time.Second, Medium: 3 * time.Second, Long: 4 * time.Second}

	// 5 runes but 15 bytes: length banding is by rune count
	text := "こんにちは"
	if utf8.RuneCountInString(text) != 5 {
		t.Fatal("test text should be 5 runes")
	}
	if got := d.ForLength(utf8.RuneCountInString(text)); got != 2*time.Second {
		t.Errorf("ForLength = %v, want short band", got)
	}
}
