package ocr

import (
	"regexp"
	"strings"
)

// scriptPatterns maps a source language to the character ranges its
// script occupies. Detections with no character in range are UI
// chrome or misreads, not translatable text.
var scriptPatterns = map[string]string{
	// Hiragana, katakana, CJK extension A, unified ideographs,
	// half-width katakana.
	"ja": `[\x{3040}-\x{30FF}\x{3400}-\x{4DBF}\x{4E00}-\x{9FAF}\x{FF66}-\x{FF9D}]`,
}

// Filter decides which detections are worth translating.
type Filter struct {
	script        *regexp.Regexp
	minConfidence float64
}

// NewFilter builds a filter for the given source language. Languages
// without a registered script pattern accept any non-empty text.
func NewFilter(lang string, minConfidence float64) *Filter {
	f := &Filter{minConfidence: minConfidence}
	if pattern, ok := scriptPatterns[lang]; ok {
		f.script = regexp.MustCompile(pattern)
	}
	return f
}

// Accept reports whether d should continue through the pipeline.
func (f *Filter) Accept(d Detection) bool {
	if strings.TrimSpace(d.Text) == "" {
		return false
	}
	if f.script != nil && !f.script.MatchString(d.Text) {
		return false
	}
	return d.Confidence >= f.minConfidence
}
