// internal/handler/response.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	appErrors "github.com/unclebandit/charity-backend/internal/errors"
)

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// WriteError maps err to its status and writes {"error": msg}. Internal causes are
// logged and replaced by a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := appErrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("❌ request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request rejected")
	}
	WriteJSON(w, status, map[string]string{"error": appErrors.Message(err)})
}

// DecodeJSON reads a JSON body of at most 1MB into v. Any failure is a bad request.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return appErrors.NewBadRequest("Bad request")
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v); err != nil {
		return &appErrors.Error{Kind: appErrors.BadRequest, Message: "Bad request", Err: err}
	}
	return nil
}

// MethodNotAllowed answers with plain text, unlike every other error.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}
