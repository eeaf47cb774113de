// Package translate defines the translation contract and providers.
package translate

import "context"

// Translator converts text between languages.
type Translator interface {
	// Translate returns text rendered in targetLang. Implementations
	// must return an error rather than an empty string on failure.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	// Name identifies the provider for logs and status output.
	Name() string
}
