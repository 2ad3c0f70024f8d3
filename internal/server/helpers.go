package server

import (
	"encoding/json"
	"net/http"

	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the uniform error envelope, mapping the error kind to an
// HTTP status. Backend failures relay the backend's original status code.
func WriteError(w http.ResponseWriter, err error) error {
	e := lightrag.AsError(err)
	return WriteJSON(w, e.HTTPStatus(), map[string]any{
		"success": false,
		"error":   e.Message,
		"details": e,
	})
}
