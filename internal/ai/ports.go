// Package ai defines the narrow capability ports the assistant consumes:
// speech-to-text, text completion, and text-to-speech. Each port has a live
// implementation (ai/openai) and a deterministic offline one (ai/mock);
// which one is wired in is a construction-time decision, never a runtime
// branch inside the pipeline.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// CompleteOptions tunes a single completion call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider for a bare JSON object reply.
	JSONMode bool
}

type (
	// Transcriber converts an audio clip into text.
	Transcriber interface {
		Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	}

	// ChatCompleter answers a single-turn prompt.
	ChatCompleter interface {
		Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
	}

	// Speaker renders text as spoken audio. It may fail independently of the
	// other capabilities; callers treat audio as a strict enhancement.
	Speaker interface {
		Synthesize(ctx context.Context, text string) ([]byte, error)
	}
)

// ProviderError marks a failed call to the external AI provider (quota,
// outage, network). Callers surface it as a single "AI service unavailable"
// outcome distinct from internal failures.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai provider %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderError reports whether err wraps a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
