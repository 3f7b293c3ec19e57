package assistant

import (
	"context"
	"errors"
	"testing"

	"viaggio/internal/ai"
	"viaggio/internal/ai/mock"
	"viaggio/internal/core"
	"viaggio/internal/log"
)

type fakeTripLister struct {
	trips []core.Trip
	err   error

	calls int
}

func (l *fakeTripLister) ListTrips(ctx context.Context, userID int64) ([]core.Trip, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.trips, nil
}

type countingTranscriber struct {
	text  string
	err   error
	calls int
}

func (tr *countingTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	tr.calls++
	if tr.err != nil {
		return "", tr.err
	}
	return tr.text, nil
}

func newTestPipeline(mockMode bool, transcriber ai.Transcriber, completer ai.ChatCompleter, speaker ai.Speaker, lister TripLister, creator ExpenseCreator) *Pipeline {
	executor := NewExecutor(&fakeFinder{}, creator, core.NewNormalizer(core.DefaultRates), nil)
	return NewPipeline(mockMode, transcriber, NewIntentParser(completer), executor, speaker, lister, log.New(log.DefaultConfig()))
}

func TestPipelineMockMode(t *testing.T) {
	transcriber := &countingTranscriber{text: "should not be called"}
	lister := &fakeTripLister{trips: testTrips}
	creator := &fakeCreator{}
	p := newTestPipeline(true, transcriber, &mock.Completer{}, &mock.Speaker{}, lister, creator)

	resp, err := p.Handle(context.Background(), Command{UserID: 1, HomeCurrency: "USD"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if resp.Transcript != MockTranscript {
		t.Errorf("Transcript = %q, want %q", resp.Transcript, MockTranscript)
	}
	if resp.ResponseText != MockResponseText {
		t.Errorf("ResponseText = %q, want %q", resp.ResponseText, MockResponseText)
	}
	if resp.Audio != nil || resp.NewExpense != nil {
		t.Errorf("mock mode returned audio/expense: %+v", resp)
	}
	if transcriber.calls != 0 || lister.calls != 0 || len(creator.created) != 0 {
		t.Error("mock mode must not touch providers or persistence")
	}
}

func TestPipelineAddExpenseFlow(t *testing.T) {
	transcriber := &countingTranscriber{text: "add fifty dollars for sushi"}
	completer := &mock.Completer{
		Response: `{"intent":"add_expense","amount":50,"currency":"USD","category":"food","date":"2026-03-10","notes":"sushi"}`,
	}
	creator := &fakeCreator{}
	p := newTestPipeline(false, transcriber, completer, &mock.Speaker{}, &fakeTripLister{trips: testTrips}, creator)

	resp, err := p.Handle(context.Background(), Command{Audio: []byte("webm"), MimeType: "audio/webm", UserID: 1, HomeCurrency: "USD"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if resp.Transcript != "add fifty dollars for sushi" {
		t.Errorf("Transcript = %q", resp.Transcript)
	}
	if resp.NewExpense == nil {
		t.Fatal("NewExpense is nil, want the persisted record")
	}
	if resp.NewExpense.TripID != testTrips[0].ID {
		t.Errorf("TripID = %d, want latest trip %d", resp.NewExpense.TripID, testTrips[0].ID)
	}
	if len(resp.Audio) == 0 {
		t.Error("expected synthesized audio")
	}
	if len(creator.created) != 1 {
		t.Fatalf("created %d expenses, want 1", len(creator.created))
	}
}

func TestPipelineUnparseableBecomesClarification(t *testing.T) {
	transcriber := &countingTranscriber{text: "mumble mumble"}
	completer := &mock.Completer{Response: "I do not know what that means."}
	creator := &fakeCreator{}
	p := newTestPipeline(false, transcriber, completer, &mock.Speaker{}, &fakeTripLister{trips: testTrips}, creator)

	resp, err := p.Handle(context.Background(), Command{UserID: 1, HomeCurrency: "USD"})
	if err != nil {
		t.Fatalf("Handle should degrade, got error: %v", err)
	}

	if resp.ResponseText != ClarificationText {
		t.Errorf("ResponseText = %q, want %q", resp.ResponseText, ClarificationText)
	}
	if resp.Transcript != "mumble mumble" {
		t.Errorf("Transcript = %q, should survive parse failure", resp.Transcript)
	}
	if resp.NewExpense != nil || len(creator.created) != 0 {
		t.Error("nothing should be persisted for an unparseable command")
	}
	// The clarification is still spoken back.
	if len(resp.Audio) == 0 {
		t.Error("expected clarification audio")
	}
}

func TestPipelineSynthesisFailureIsTextOnly(t *testing.T) {
	transcriber := &countingTranscriber{text: "add ten dollars for coffee"}
	completer := &mock.Completer{
		Response: `{"intent":"add_expense","amount":10,"currency":"USD","category":"food","date":"2026-03-10","notes":"coffee"}`,
	}
	speaker := &mock.Speaker{Err: errors.New("tts quota exceeded")}
	p := newTestPipeline(false, transcriber, completer, speaker, &fakeTripLister{trips: testTrips}, &fakeCreator{})

	resp, err := p.Handle(context.Background(), Command{UserID: 1, HomeCurrency: "USD"})
	if err != nil {
		t.Fatalf("Handle should tolerate synthesis failure, got: %v", err)
	}
	if resp.Audio != nil {
		t.Error("Audio should be nil when synthesis fails")
	}
	if resp.ResponseText == "" || resp.NewExpense == nil {
		t.Errorf("text and expense should survive synthesis failure: %+v", resp)
	}
}

func TestPipelineTranscriptionFailureIsFatal(t *testing.T) {
	providerErr := &ai.ProviderError{Op: "transcribe", StatusCode: 503, Err: errors.New("overloaded")}
	transcriber := &countingTranscriber{err: providerErr}
	p := newTestPipeline(false, transcriber, &mock.Completer{}, &mock.Speaker{}, &fakeTripLister{}, &fakeCreator{})

	_, err := p.Handle(context.Background(), Command{UserID: 1, HomeCurrency: "USD"})
	var pe *ai.ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want wrapped ai.ProviderError", err)
	}
}
