// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"rm-copilot/internal/common/errors"
	"rm-copilot/internal/models"
)

type explainRequest struct {
	DealSummary *models.DealSummary `json:"deal_summary"`
}

type qaRequest struct {
	DealSummary *models.DealSummary `json:"deal_summary"`
	Question    string              `json:"question"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		writeStandardError(w, errors.NewMalformedRequestError(err))
		return
	}

	summary, err := s.assess.Assess(r.Context(), body)
	if err != nil {
		writeStandardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req explainRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeStandardError(w, err)
		return
	}
	if req.DealSummary == nil {
		writeStandardError(w, errors.NewValidationFailedError([]errors.FieldError{
			{Field: "deal_summary", Message: "deal summary is required", Code: "REQUIRED"},
		}))
		return
	}

	result, err := s.gateway.Explain(r.Context(), req.DealSummary)
	if err != nil {
		writeStandardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req qaRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		writeStandardError(w, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeStandardError(w, errors.NewValidationFailedError([]errors.FieldError{
			{Field: "question", Message: "question must not be empty", Code: "REQUIRED"},
		}))
		return
	}

	result, err := s.gateway.Answer(r.Context(), req.DealSummary, strings.TrimSpace(req.Question))
	if err != nil {
		writeStandardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	redisStatus := "disabled"
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx); err != nil {
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"ai_configured": s.gateway.Configured(),
		"redis":         redisStatus,
	})
}

// readBody reads the request body under the configured size cap.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	body, err := s.readBody(w, r)
	if err != nil {
		return errors.NewMalformedRequestError(err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewMalformedRequestError(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}

// writeStandardError maps an engine or gateway error to its HTTP status and
// renders the structured error body.
func writeStandardError(w http.ResponseWriter, err error) {
	if stdErr, ok := errors.AsStandardError(err); ok {
		writeJSON(w, errors.HTTPStatus(stdErr.Code), map[string]interface{}{"error": stdErr})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
