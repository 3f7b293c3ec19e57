package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viaggio/internal/ai"
	"viaggio/internal/core"
	"viaggio/internal/log"
)

const (
	// MockTranscript is the fixed transcript returned when no API key is
	// configured, so the full flow stays demoable offline.
	MockTranscript = "(mock) Add 50 USD for food today"

	// MockResponseText tells the user why nothing real happened.
	MockResponseText = "Mock mode: OPENAI_API_KEY is not set. Set it in your .env to enable voice commands."

	// ClarificationText is spoken back when the intent parser cannot make
	// sense of the transcript. Not an error: the user just retries.
	ClarificationText = "I couldn't understand that. Please try again."
)

// TripLister returns the user's trips, most recent first.
type TripLister interface {
	ListTrips(ctx context.Context, userID int64) ([]core.Trip, error)
}

// Command is one recorded voice utterance plus its request context.
type Command struct {
	Audio        []byte
	MimeType     string
	UserID       int64
	ActiveTripID int64 // 0 means no explicit trip selection
	HomeCurrency string
}

// Response carries everything the caller needs to render: what was heard,
// what the assistant answers, optional speech audio, and the expense that
// was created, if any.
type Response struct {
	Transcript   string
	ResponseText string
	Audio        []byte
	NewExpense   *core.Expense
}

// Pipeline runs the voice command flow: transcribe, parse the intent,
// execute it, synthesize the spoken reply. Each stage degrades rather than
// failing the whole request where the contract allows it.
type Pipeline struct {
	mockMode    bool
	transcriber ai.Transcriber
	parser      *IntentParser
	executor    *Executor
	speaker     ai.Speaker
	trips       TripLister
	logger      *log.Logger
	now         func() time.Time
}

func NewPipeline(mockMode bool, transcriber ai.Transcriber, parser *IntentParser, executor *Executor, speaker ai.Speaker, trips TripLister, logger *log.Logger) *Pipeline {
	return &Pipeline{
		mockMode:    mockMode,
		transcriber: transcriber,
		parser:      parser,
		executor:    executor,
		speaker:     speaker,
		trips:       trips,
		logger:      logger.WithComponent(log.ComponentVoice),
		now:         time.Now,
	}
}

// Handle processes a voice command end to end.
//
// In mock mode it short-circuits before any provider or persistence call.
// A transcript the parser cannot interpret yields ClarificationText, not an
// error. Speech synthesis failures are logged and the response is returned
// text-only.
func (p *Pipeline) Handle(ctx context.Context, cmd Command) (Response, error) {
	if p.mockMode {
		return Response{
			Transcript:   MockTranscript,
			ResponseText: MockResponseText,
		}, nil
	}

	transcript, err := p.transcriber.Transcribe(ctx, cmd.Audio, cmd.MimeType)
	if err != nil {
		return Response{}, fmt.Errorf("transcribe: %w", err)
	}
	p.logger.InfoContext(ctx, "transcribed voice command", log.FieldUserID, cmd.UserID)

	trips, err := p.trips.ListTrips(ctx, cmd.UserID)
	if err != nil {
		return Response{}, fmt.Errorf("list trips: %w", err)
	}

	intent, err := p.parser.Parse(ctx, transcript, p.now(), trips)
	if err != nil {
		if errors.Is(err, ErrUnparseable) {
			p.logger.WarnContext(ctx, "unparseable voice command", log.FieldUserID, cmd.UserID)
			return p.respond(ctx, transcript, ClarificationText, nil), nil
		}
		return Response{}, fmt.Errorf("parse intent: %w", err)
	}
	p.logger.InfoContext(ctx, "parsed intent", log.FieldIntent, string(intent.Kind))

	result, err := p.executor.Execute(ctx, intent, cmd.UserID, cmd.ActiveTripID, trips, cmd.HomeCurrency)
	if err != nil {
		return Response{}, fmt.Errorf("execute intent: %w", err)
	}

	return p.respond(ctx, transcript, result.Text, result.Expense), nil
}

// respond attaches best-effort speech audio to the textual answer.
func (p *Pipeline) respond(ctx context.Context, transcript, text string, expense *core.Expense) Response {
	resp := Response{
		Transcript:   transcript,
		ResponseText: text,
		NewExpense:   expense,
	}
	audio, err := p.speaker.Synthesize(ctx, text)
	if err != nil {
		p.logger.WarnContext(ctx, "speech synthesis failed, returning text only", log.FieldError, err)
		return resp
	}
	resp.Audio = audio
	return resp
}
