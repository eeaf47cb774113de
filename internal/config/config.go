// Package config handles engine configuration
package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr string

	// Collaborators
	OCRProvider     string // "paddle" (HTTP service) or "tesseract" (local)
	OCRAddr         string
	TesseractLang   string
	TranslateAddr   string
	TranslateAPIKey string
	SourceLang      string
	TargetLang      string

	// Scan pipeline
	ScanInterval    float64 // seconds
	MinConfidence   float64
	CaptureRegion   string // "x,y,w,h", empty = full screen
	SkipUnchanged   bool   // perceptual-hash frame gate
	MaxHashDistance int    // Hamming distance below which frames count as unchanged
	ScanAutostart   bool

	// Overlays
	FontSize       int
	OverlayAlpha   float64
	DurationShort  float64 // seconds
	DurationMedium float64 // seconds
	DurationLong   float64 // seconds

	// Expiry
	CacheLifetime        float64 // seconds
	OverlaySweepInterval float64 // seconds
	CacheSweepInterval   float64 // seconds
}

func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		OCRProvider:     getEnv("OCR_PROVIDER", "paddle"),
		OCRAddr:         getEnv("OCR_ADDR", "http://localhost:8866/predict/ocr_system"),
		TesseractLang:   getEnv("TESSERACT_LANG", "jpn"),
		TranslateAddr:   getEnv("TRANSLATE_ADDR", "https://api-free.deepl.com/v2/translate"),
		TranslateAPIKey: getEnv("TRANSLATE_API_KEY", ""),
		SourceLang:      getEnv("SOURCE_LANG", "ja"),
		TargetLang:      getEnv("TARGET_LANG", "en"),

		ScanInterval:    getEnvFloat("SCAN_INTERVAL", 0.05),
		MinConfidence:   getEnvFloat("MIN_CONFIDENCE", 0.53),
		CaptureRegion:   getEnv("CAPTURE_REGION", ""),
		SkipUnchanged:   getEnvBool("SKIP_UNCHANGED", true),
		MaxHashDistance: getEnvInt("MAX_HASH_DISTANCE", 5),
		ScanAutostart:   getEnvBool("SCAN_AUTOSTART", true),

		FontSize:       getEnvInt("FONT_SIZE", 8),
		OverlayAlpha:   getEnvFloat("OVERLAY_ALPHA", 0.75),
		DurationShort:  getEnvFloat("DURATION_SHORT", 2.0),
		DurationMedium: getEnvFloat("DURATION_MEDIUM", 3.0),
		DurationLong:   getEnvFloat("DURATION_LONG", 4.0),

		CacheLifetime:        getEnvFloat("CACHE_LIFETIME", 20.0),
		OverlaySweepInterval: getEnvFloat("OVERLAY_SWEEP_INTERVAL", 0.5),
		CacheSweepInterval:   getEnvFloat("CACHE_SWEEP_INTERVAL", 5.0),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}
