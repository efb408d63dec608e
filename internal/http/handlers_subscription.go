package http

import (
	"fmt"
	"net/http"

	"subtrack/internal/core"
	"subtrack/internal/services"
)

type subscriptionJSON struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Frequency string  `json:"frequency"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
}

func toSubscriptionJSON(sub core.Subscription) subscriptionJSON {
	return subscriptionJSON{
		ID:        sub.ID,
		Name:      sub.Name,
		Price:     sub.Price.Amount(),
		Frequency: string(sub.Frequency),
		Category:  sub.CategoryName,
		Status:    string(sub.Status),
	}
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]subscriptionJSON, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionJSON(sub))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.subscriptions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionJSON(sub))
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      *string     `json:"name"`
		Price     numberField `json:"price"`
		Frequency *string     `json:"frequency"`
		Category  *string     `json:"category"`
		Status    string      `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Name == nil || !body.Price.set || body.Frequency == nil || body.Category == nil {
		writeError(w, r, core.Validationf("Missing required fields. Needs: [name, price, frequency, category]"))
		return
	}

	cents, err := body.Price.cents()
	if err != nil {
		writeError(w, r, core.Validationf("Price must be a positive number"))
		return
	}

	sub, err := s.subscriptions.Create(r.Context(), services.CreateSubscriptionInput{
		Name:       *body.Name,
		PriceCents: cents,
		Frequency:  *body.Frequency,
		Category:   *body.Category,
		Status:     body.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Created",
		"subscription": toSubscriptionJSON(sub),
		"note":         fmt.Sprintf("Category '%s' was linked successfully.", sub.CategoryName),
	})
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Existence is settled before the body is even looked at; a missing
	// subscription is 404 no matter how malformed the payload is.
	if _, err := s.subscriptions.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Name      *string     `json:"name"`
		Price     numberField `json:"price"`
		Frequency *string     `json:"frequency"`
		Status    *string     `json:"status"`
		Category  *string     `json:"category"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.UpdateSubscriptionInput{
		Name:      body.Name,
		Frequency: body.Frequency,
		Status:    body.Status,
		Category:  body.Category,
	}
	if body.Price.set {
		cents, err := body.Price.cents()
		if err != nil {
			writeError(w, r, core.Validationf("Invalid price"))
			return
		}
		in.PriceCents = &cents
	}

	sub, err := s.subscriptions.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Updated",
		"subscription": toSubscriptionJSON(sub),
	})
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.subscriptions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Deleted successfully"})
}
