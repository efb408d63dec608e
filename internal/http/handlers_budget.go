package http

import (
	"fmt"
	"net/http"

	"subtrack/internal/core"
)

func statusKey(gen int64) string {
	return fmt.Sprintf("budget_status_v%d", gen)
}

type budgetJSON struct {
	ID           int64   `json:"id"`
	MonthlyLimit float64 `json:"monthly_limit"`
}

type budgetStatusResponse struct {
	MonthlyBudget   float64 `json:"monthly_budget"`
	CurrentSpending float64 `json:"current_spending"`
	RemainingBudget float64 `json:"remaining_budget"`
	UsagePercent    float64 `json:"usage_percent"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.budget.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetJSON{
		ID:           budget.ID,
		MonthlyLimit: budget.MonthlyLimit.Amount(),
	})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Limit numberField `json:"limit"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if !body.Limit.set {
		writeError(w, r, core.Validationf("Missing required field: limit"))
		return
	}

	cents, err := body.Limit.cents()
	if err != nil {
		writeError(w, r, core.Validationf("Budget limit must be a positive number"))
		return
	}

	budget, err := s.budget.Set(r.Context(), cents)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Budget updated",
		"monthly_limit": budget.MonthlyLimit.Amount(),
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	key := statusKey(s.reportGen.Load())
	if cached, ok := s.statusCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	status, err := s.budget.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := budgetStatusResponse{
		MonthlyBudget:   status.MonthlyBudget.Amount(),
		CurrentSpending: status.CurrentSpending.Amount(),
		RemainingBudget: status.RemainingBudget.Amount(),
		UsagePercent:    status.UsagePercent,
	}
	s.statusCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}
