package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kambaz-lms/kambaz-quiz/internal/quiz"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// httpError maps the domain error taxonomy onto statuses: configuration
// errors block the save with 400, ineligible attempts surface as 409
// without creating anything, missing entities are 404, the rest 500.
func httpError(w http.ResponseWriter, err error) {
	var cfg *quiz.ConfigurationError
	var inel *quiz.IneligibleError
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound),
		errors.Is(err, quiz.ErrQuestionNotFound),
		errors.Is(err, quiz.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &cfg):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &inel):
		writeJSONStatus(w, http.StatusConflict, map[string]any{
			"error":           inel.Reason,
			"days_until_open": inel.DaysUntilOpen,
		})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
