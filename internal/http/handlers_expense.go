package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"viaggio/internal/core"
	"viaggio/internal/storage"
)

type expenseRequest struct {
	TripID   int64  `json:"trip_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

type expenseResponse struct {
	ID        int64   `json:"id"`
	TripID    int64   `json:"trip_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
	Notes     string  `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:        e.ID,
		TripID:    e.TripID,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Category:  string(e.Category),
		Date:      core.FormatDate(e.Date),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// handleListExpenses filters by optional trip_id, category, and date query
// parameters, always scoped to the requesting user.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	filter := storage.ExpenseFilter{UserID: userID}
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("trip_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid trip_id"})
			return
		}
		filter.TripID = id
	}
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		filter.Category = core.ParseCategory(raw)
	}
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date"})
			return
		}
		filter.Date = d
	}

	expenses, err := s.repo.FindExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.TripID <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "trip_id is required"})
		return
	}

	// Ownership check before writing anything.
	if _, err := s.repo.GetTrip(r.Context(), req.TripID, userID); err != nil {
		writeError(w, r, err)
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	date := time.Now()
	if req.Date != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date"})
			return
		}
	}

	expense := core.Expense{
		TripID:   req.TripID,
		UserID:   userID,
		Amount:   amount,
		Currency: core.ParseCurrency(req.Currency),
		Category: core.ParseCategory(req.Category),
		Date:     date,
		Notes:    strings.TrimSpace(req.Notes),
	}

	created, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summarizer.InvalidateTrip(created.TripID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
