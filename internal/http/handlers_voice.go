package http

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"viaggio/internal/assistant"
	"viaggio/internal/core"
)

// maxAudioBytes caps voice uploads at 25 MB, the transcription provider's
// own file limit.
const maxAudioBytes = 25 << 20

type voiceResponse struct {
	Transcript   string           `json:"transcript"`
	ResponseText string           `json:"response_text"`
	AudioBase64  string           `json:"audio_base64,omitempty"`
	NewExpense   *expenseResponse `json:"new_expense,omitempty"`
}

// handleVoiceCommand accepts a multipart form with an `audio` file plus
// optional trip_id and home_currency fields, and runs the voice pipeline.
func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "audio file too large or malformed form"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing audio file"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable audio file"})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	var tripID int64
	if raw := strings.TrimSpace(r.FormValue("trip_id")); raw != "" {
		tripID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || tripID <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid trip_id"})
			return
		}
	}

	homeCurrency := s.homeCurrency
	if raw := strings.TrimSpace(r.FormValue("home_currency")); raw != "" {
		homeCurrency = core.ParseCurrency(raw)
	}

	resp, err := s.pipeline.Handle(r.Context(), assistant.Command{
		Audio:        audio,
		MimeType:     mimeType,
		UserID:       userID,
		ActiveTripID: tripID,
		HomeCurrency: homeCurrency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := voiceResponse{
		Transcript:   resp.Transcript,
		ResponseText: resp.ResponseText,
	}
	if len(resp.Audio) > 0 {
		out.AudioBase64 = base64.StdEncoding.EncodeToString(resp.Audio)
	}
	if resp.NewExpense != nil {
		e := toExpenseResponse(*resp.NewExpense)
		out.NewExpense = &e
	}
	writeJSON(w, http.StatusOK, out)
}
