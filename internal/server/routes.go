package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// toolRequest is the body of POST /mcp/{namespace}/{tool}.
type toolRequest struct {
	Arguments map[string]any `json:"arguments"`
	Stream    bool           `json:"stream"`
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /mcp/{namespace}/tools", s.handleListTools)
	mux.HandleFunc("POST /mcp/{namespace}/{tool}", s.handleCallTool)

	// Streamable HTTP MCP transport, one endpoint per namespace.
	for _, ns := range s.dispatcher.Table().Namespaces() {
		mux.Handle("/mcp/"+ns, newMCPHandler(s.dispatcher, ns))
	}

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

// handleHealth reports gateway liveness and the configured namespaces in
// configuration order.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"prefixes": s.dispatcher.Table().Namespaces(),
		"version":  common.GetVersion(),
	})
}

// handleListTools lists the namespaced tool catalog for one namespace.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	namespace := r.PathValue("namespace")

	if _, err := s.dispatcher.Table().Resolve(namespace); err != nil {
		WriteError(w, err)
		return
	}

	tools := s.dispatcher.ListTools(namespace)
	WriteJSON(w, http.StatusOK, map[string]any{
		"prefix": namespace,
		"tools":  tools,
		"count":  len(tools),
	})
}

// handleCallTool executes one tool invocation. Streaming operations respond
// with newline-delimited JSON records; everything else gets a single
// {success, data} envelope.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	namespace := r.PathValue("namespace")
	toolName := r.PathValue("tool")

	var req toolRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			WriteError(w, lightrag.NewError(lightrag.KindValidation, "invalid request body: %v", err))
			return
		}
	}

	desc, err := s.dispatcher.Describe(namespace, toolName)
	if err != nil {
		WriteError(w, err)
		return
	}

	if req.Stream && !desc.Streaming {
		WriteError(w, lightrag.NewError(lightrag.KindValidation,
			"operation %q does not support streaming", desc.Name))
		return
	}

	// Streaming operations always stream over HTTP, with or without the
	// explicit flag, matching how callers already use /query/stream.
	if desc.Streaming {
		s.streamTool(w, r, namespace, desc, req.Arguments)
		return
	}

	data, err := s.dispatcher.Invoke(r.Context(), namespace, desc, req.Arguments)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// handleNotFound returns a JSON 404 for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"success":false,"error":"Not Found"}`))
}
