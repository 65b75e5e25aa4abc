// Package httpserver exposes the chat core over a small REST surface.
package httpserver

import (
	"context"
	"net/http"

	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/xlog"
	"github.com/gorilla/mux"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpapi", "httpserver")

// ServiceName is reported by the health endpoint.
const ServiceName = "mcp-client-api"

// Version of the API surface.
const Version = "1.0.0"

// ChatService is the facade surface the handlers consume.
type ChatService interface {
	ProcessQuery(ctx context.Context, query string) *chat.QueryResponse
	ListTools(ctx context.Context) *chat.ToolsResponse
}

// Server routes API requests to the chat service.
type Server struct {
	service ChatService
}

// New creates a server over the given chat service.
func New(service ChatService) *Server {
	return &Server{service: service}
}

// Handler builds the HTTP handler with routing and middleware applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogging)
	router.Use(cors)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/tools", s.handleTools).Methods(http.MethodGet)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodOptions)

	router.NotFoundHandler = requestLogging(http.HandlerFunc(handleNotFound))
	router.MethodNotAllowedHandler = requestLogging(http.HandlerFunc(handleMethodNotAllowed))

	return router
}
