package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json"

type errorResponse struct {
	Error string `json:"error"`
}

// APIDataHandler returns the weekly roster as {"YYYY-MM-DD": [{"name", "email"}]} (GET /api/data)
func (s *Server) APIDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekly, err := s.roster.WeeklyRoster(r.Context())
		if err != nil {
			status := apperrors.HTTPStatus(err)
			zerolog.Ctx(r.Context()).Err(err).Int("status", status).Msg("Failed to build roster")
			writeJSONError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, weekly)
	}
}

// HealthHandler reports liveness (GET /healthz)
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers CORS preflight requests once CorsMiddleware has set the headers
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
