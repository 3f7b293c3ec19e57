// Package openai implements the ai capability ports against an
// OpenAI-compatible REST API using plain net/http.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"viaggio/internal/ai"
)

// Config holds everything needed to reach the provider.
type Config struct {
	BaseURL         string
	APIKey          string
	ChatModel       string
	TranscribeModel string
	SpeechModel     string
	SpeechVoice     string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

var (
	_ ai.Transcriber   = (*Client)(nil)
	_ ai.ChatCompleter = (*Client)(nil)
	_ ai.Speaker       = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Transcribe sends the audio clip to the transcription endpoint and returns
// the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", c.cfg.TranscribeModel); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", fileNameFor(mimeType))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	respBody, err := c.post(ctx, "transcribe", "/audio/transcriptions", &body, mw.FormDataContentType())
	if err != nil {
		return "", err
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ai.ProviderError{Op: "transcribe", Err: fmt.Errorf("decode response: %w", err)}
	}
	return strings.TrimSpace(parsed.Text), nil
}

// Complete sends a single-turn chat completion request.
func (c *Client) Complete(ctx context.Context, prompt string, opts ai.CompleteOptions) (string, error) {
	req := map[string]any{
		"model": c.cfg.ChatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if opts.MaxTokens > 0 {
		req["max_tokens"] = opts.MaxTokens
	}
	req["temperature"] = opts.Temperature
	if opts.JSONMode {
		req["response_format"] = map[string]string{"type": "json_object"}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, "complete", "/chat/completions", bytes.NewReader(payload), "application/json")
	if err != nil {
		return "", err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ai.ProviderError{Op: "complete", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ai.ProviderError{Op: "complete", Err: fmt.Errorf("empty choices in response")}
	}
	return parsed.Choices[0].Message.Content, nil
}

// Synthesize renders text as spoken audio and returns the raw bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	req := map[string]string{
		"model": c.cfg.SpeechModel,
		"voice": c.cfg.SpeechVoice,
		"input": text,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return c.post(ctx, "synthesize", "/audio/speech", bytes.NewReader(payload), "application/json")
}

func (c *Client) post(ctx context.Context, op, path string, body io.Reader, contentType string) ([]byte, error) {
	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ai.ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ai.ProviderError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ai.ProviderError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(respBody))),
		}
	}
	return respBody, nil
}

// fileNameFor picks a filename extension the transcription endpoint accepts.
func fileNameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "mp3"), strings.Contains(mimeType, "mpeg"):
		return "audio.mp3"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return "audio.m4a"
	default:
		return "audio.webm"
	}
}
