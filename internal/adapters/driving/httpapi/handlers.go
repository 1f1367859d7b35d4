package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/util"
)

type healthResponse struct {
	Status string `json:"status"`
}

type sessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req domain.IngestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := util.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.ports.Ingest.Ingest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req domain.RetrieveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := util.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.ports.Retrieval.RetrieveForMessage(r.Context(), req, s.ports.now())
	if err != nil {
		writeError(w, fmt.Errorf("retrieve: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if err := util.Validate(req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.ports.Session.Save(r.Context(), req); err != nil {
		writeError(w, fmt.Errorf("save session: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, SessionID: req.SessionID})
}
