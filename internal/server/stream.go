package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bobmcallan/lightrag-gateway/internal/catalog"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// streamRecord is one newline-delimited JSON record of a streamed response:
// a sequence of "chunk" records, terminated by exactly one "done" record, or
// an "error" record if the stream breaks mid-flight.
type streamRecord struct {
	Type   string          `json:"type"`
	Data   string          `json:"data,omitempty"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
	Detail *lightrag.Error `json:"details,omitempty"`
}

// streamTool runs a streaming invocation and writes NDJSON records as chunks
// arrive. Errors before the first byte map to a regular JSON error response;
// errors mid-stream become a terminal "error" record since the status line is
// already gone.
func (s *Server) streamTool(w http.ResponseWriter, r *http.Request, namespace string, desc catalog.Descriptor, args map[string]any) {
	stream, err := s.dispatcher.InvokeStream(r.Context(), namespace, desc, args)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no") // disable buffering in nginx
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			enc.Encode(streamRecord{Type: "done", Status: "completed"})
			if flusher != nil {
				flusher.Flush()
			}
			return
		}
		if err != nil {
			e := lightrag.AsError(err)
			s.logger.Error().Err(err).Str("operation", desc.Name).Msg("stream failed mid-flight")
			enc.Encode(streamRecord{Type: "error", Error: e.Message, Detail: e})
			if flusher != nil {
				flusher.Flush()
			}
			return
		}

		enc.Encode(streamRecord{Type: "chunk", Data: chunk})
		if flusher != nil {
			flusher.Flush()
		}
	}
}
