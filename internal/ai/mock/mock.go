// Package mock provides deterministic, offline implementations of the ai
// capability ports. They let the pipeline and summary composer run in tests
// and demos without credentials or network access.
package mock

import (
	"context"

	"viaggio/internal/ai"
)

// Transcript is the fixed utterance the mock transcriber returns.
const Transcript = "(mock) Add 50 USD for food today"

// Transcriber always recognizes the same utterance.
type Transcriber struct{}

func (Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return Transcript, nil
}

// Completer replies with a fixed response. Tests set Response to the JSON or
// text they want the caller to receive; Err short-circuits the call.
type Completer struct {
	Response string
	Err      error

	// Prompts records every prompt received, in order.
	Prompts []string
}

func (c *Completer) Complete(ctx context.Context, prompt string, opts ai.CompleteOptions) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// Speaker returns a tiny fixed payload, or fails when Err is set. Synthesis
// failures must be non-fatal for callers, so tests use Err to verify that.
type Speaker struct {
	Err error
}

func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return []byte("mock-audio"), nil
}

var (
	_ ai.Transcriber   = Transcriber{}
	_ ai.ChatCompleter = (*Completer)(nil)
	_ ai.Speaker       = (*Speaker)(nil)
)
