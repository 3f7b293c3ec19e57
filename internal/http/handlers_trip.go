package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"viaggio/internal/core"
	"viaggio/internal/storage"
)

type tripRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type tripResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// tripDetailResponse is the single-trip view, trip fields plus its expenses.
type tripDetailResponse struct {
	tripResponse
	Expenses []expenseResponse `json:"expenses"`
}

func toTripResponse(t core.Trip) tripResponse {
	resp := tripResponse{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if !t.StartDate.IsZero() {
		resp.StartDate = core.FormatDate(t.StartDate)
	}
	if !t.EndDate.IsZero() {
		resp.EndDate = core.FormatDate(t.EndDate)
	}
	return resp
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	trips, err := s.repo.ListTrips(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = toTripResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	trip := core.Trip{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Destination: strings.TrimSpace(req.Destination),
	}
	if req.StartDate != "" {
		d, err := core.ParseDate(req.StartDate)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid start_date"})
			return
		}
		trip.StartDate = d
	}
	if req.EndDate != "" {
		d, err := core.ParseDate(req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid end_date"})
			return
		}
		trip.EndDate = d
	}
	if err := trip.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.repo.CreateTrip(r.Context(), trip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripResponse(created))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	trip, err := s.repo.GetTrip(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := s.repo.FindExpenses(r.Context(), storage.ExpenseFilter{UserID: userID, TripID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := tripDetailResponse{tripResponse: toTripResponse(trip), Expenses: make([]expenseResponse, len(expenses))}
	for i, e := range expenses {
		out.Expenses[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.repo.DeleteTrip(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	s.summarizer.InvalidateTrip(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTripSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
