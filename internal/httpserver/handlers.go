package httpserver

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/xlog"
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type chatRequest struct {
	Prompt *string `json:"prompt"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "MCP Client API",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{
			Status: chat.StatusError,
			Error:  "Content-Type must be application/json",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Status: chat.StatusError,
			Error:  "Missing fields in request body: prompt",
		})
		return
	}

	resp := s.service.ProcessQuery(r.Context(), *req.Prompt)
	if resp.Status != chat.StatusSuccess {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	resp := s.service.ListTools(r.Context())
	if resp.Status != chat.StatusSuccess {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Status: chat.StatusError,
		Error:  "Resource not found",
	})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Status: chat.StatusError,
		Error:  "Method not allowed",
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.KV(xlog.ERROR,
			"status", "failed_to_encode_response",
			"err", err.Error(),
		)
	}
}
