package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/resilience"
)

// deeplLangOverrides maps ISO codes to DeepL's regional variants
// where plain uppercasing is deprecated. Variants are only valid as
// target languages.
var deeplLangOverrides = map[string]string{
	"en": "EN-US",
	"pt": "PT-BR",
}

// DeepL is a Translator backed by the DeepL REST API.
type DeepL struct {
	apiURL  string
	apiKey  string
	client  *http.Client
	breaker *resilience.Breaker
}

// NewDeepL creates a DeepL translator. apiURL selects the free or
// pro endpoint.
func NewDeepL(apiURL, apiKey string) *DeepL {
	return &DeepL{
		apiURL:  apiURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Minute},
		breaker: resilience.New(resilience.TranslateConfig()),
	}
}

func (d *DeepL) Name() string {
	return "deepl"
}

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate calls the DeepL API with retry on transient failures.
func (d *DeepL) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var result string
	err := resilience.Retry(ctx, resilience.TranslateRetryConfig(), func() error {
		translated, err := resilience.ExecuteWithResult(d.breaker, func() (string, error) {
			return d.translate(ctx, text, sourceLang, targetLang)
		})
		if err != nil {
			return err
		}
		result = translated
		return nil
	})
	return result, err
}

func (d *DeepL) translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", strings.ToUpper(sourceLang))
	form.Set("target_lang", deeplLang(targetLang))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to build translate request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "translate service unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", apperrors.New(apperrors.CodeRateLimited, "translate rate limit exceeded")
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		return "", apperrors.Newf(apperrors.CodeUnavailable, "translate service returned %d: %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return "", apperrors.Newf(apperrors.CodeTranslateFailed, "translate request failed with %d: %s", resp.StatusCode, string(body))
	}

	var parsed deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeTranslateFailed, "failed to decode translate response")
	}
	if len(parsed.Translations) == 0 || parsed.Translations[0].Text == "" {
		return "", apperrors.New(apperrors.CodeTranslateFailed, "translate response contained no text")
	}
	return parsed.Translations[0].Text, nil
}

// deeplLang maps an ISO language code to DeepL's target format.
func deeplLang(code string) string {
	if mapped, ok := deeplLangOverrides[strings.ToLower(code)]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}
