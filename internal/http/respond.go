package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"subtrack/internal/core"
)

// errorEnvelope is the wire format for all failures:
// {"error": "Bad Request", "message": "..."}.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error kind to a status code and the error
// envelope. Internal errors are logged with detail but reported
// generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch core.KindOf(err) {
	case core.KindValidation, core.KindConflict, core.KindBudgetExceeded:
		writeJSON(w, http.StatusBadRequest, errorEnvelope{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	case core.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorEnvelope{
			Error:   "Not Found",
			Message: err.Error(),
		})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Error:   "Internal Server Error",
			Message: "An unexpected error occurred",
		})
	}
}

// pathID parses the {id} path segment. A non-numeric id can only come
// from a URL naming no existing resource.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, core.NotFoundf("Resource not found")
	}
	return id, nil
}

// numberField accepts a JSON number or numeric string and keeps its raw
// text so amounts can be parsed into cents without a float round trip.
// Decoding records presence, letting partial updates distinguish absent
// fields from zero values.
type numberField struct {
	raw string
	set bool
}

func (n *numberField) UnmarshalJSON(b []byte) error {
	n.set = true
	n.raw = strings.Trim(string(b), `"`)
	return nil
}

// cents parses the field into cents, rejecting negatives and garbage.
func (n *numberField) cents() (int64, error) {
	return core.ParseDecimalToCents(n.raw)
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.Validationf("Invalid JSON body")
	}
	return nil
}
