package utils

import (
	"net/http"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
)

type Response struct {
	Message string `json:"message" example:"Internal server error"`
	Reason  string `json:"reason,omitempty" example:"min_slots"`
}

func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("can't marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		zap.L().Error("can't write response", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, Response{Message: message})
}

func RespondWithReason(w http.ResponseWriter, code int, message, reason string) {
	RespondWithJSON(w, code, Response{Message: message, Reason: reason})
}

// DecodeJSON reads a request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
