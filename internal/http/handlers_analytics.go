package http

import (
	"fmt"
	"net/http"
)

func analyticsKey(gen int64) string {
	return fmt.Sprintf("analytics_v%d", gen)
}

type breakdownJSON struct {
	Name              string  `json:"name"`
	MonthlyEquivalent float64 `json:"monthly_equivalent"`
}

type analyticsResponse struct {
	TotalPricePerMonth  float64         `json:"total_price_per_month"`
	TotalPricePerYear   float64         `json:"total_price_per_year"`
	ActiveSubscriptions int             `json:"active_subscriptions"`
	Breakdown           []breakdownJSON `json:"breakdown"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	key := analyticsKey(s.reportGen.Load())
	if cached, ok := s.analyticsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.analytics.MonthlyReport(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := analyticsResponse{
		TotalPricePerMonth:  report.TotalPerMonth.Amount(),
		TotalPricePerYear:   report.TotalPerYear.Amount(),
		ActiveSubscriptions: report.ActiveCount,
		Breakdown:           make([]breakdownJSON, 0, len(report.Breakdown)),
	}
	for _, entry := range report.Breakdown {
		resp.Breakdown = append(resp.Breakdown, breakdownJSON{
			Name:              entry.Name,
			MonthlyEquivalent: entry.MonthlyEquivalent.Amount(),
		})
	}

	s.analyticsCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}
