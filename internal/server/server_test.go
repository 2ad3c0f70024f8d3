package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/config"
	"github.com/bobmcallan/lightrag-gateway/internal/dispatch"
	"github.com/bobmcallan/lightrag-gateway/internal/routes"
)

// newTestServer wires a gateway server to httptest backends, one per
// namespace.
func newTestServer(t *testing.T, backendHandler http.HandlerFunc, namespaces ...string) *Server {
	t.Helper()

	var entries []string
	for _, ns := range namespaces {
		srv := httptest.NewServer(backendHandler)
		t.Cleanup(srv.Close)
		entries = append(entries, ns+":"+srv.URL)
	}

	cfg := config.NewDefaultConfig()
	cfg.Gateway.Backends = strings.Join(entries, ",")

	logger := common.NewSilentLogger()
	table, err := routes.Build(cfg, logger)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(table.Close)

	return New(cfg, dispatch.New(table, logger), logger)
}

func defaultBackend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/query/stream" {
		w.Write([]byte("{\"response\":\"alpha\"}\n{\"response\":\"beta\"}\n"))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1", "rag2")

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got struct {
		Status   string   `json:"status"`
		Prefixes []string `json:"prefixes"`
		Version  string   `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("health response not JSON: %v", err)
	}
	if got.Status != "healthy" {
		t.Errorf("expected status healthy, got %s", got.Status)
	}
	if len(got.Prefixes) != 2 || got.Prefixes[0] != "rag1" || got.Prefixes[1] != "rag2" {
		t.Errorf("unexpected prefixes %v", got.Prefixes)
	}
	if got.Version == "" {
		t.Error("expected a version string")
	}
}

func TestHandleListTools(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodGet, "/mcp/rag1/tools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Prefix string `json:"prefix"`
		Count  int    `json:"count"`
		Tools  []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("listing not JSON: %v", err)
	}
	if got.Prefix != "rag1" {
		t.Errorf("expected prefix rag1, got %s", got.Prefix)
	}
	if got.Count != len(got.Tools) || got.Count == 0 {
		t.Errorf("count %d does not match %d tools", got.Count, len(got.Tools))
	}
	for _, tool := range got.Tools {
		if !strings.HasPrefix(tool.Name, "rag1_") {
			t.Errorf("tool %s missing namespace prefix", tool.Name)
		}
	}
}

func TestHandleListTools_UnknownNamespace(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodGet, "/mcp/ghost/tools", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var got struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error response not JSON: %v", err)
	}
	if got.Success {
		t.Error("error envelope should carry success=false")
	}
	if got.Error == "" {
		t.Error("error envelope should carry a message")
	}
}

func TestHandleCallTool_Success(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_get_health", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if !got.Success {
		t.Error("expected success=true")
	}
	if string(got.Data) != `{"status":"ok"}` {
		t.Errorf("unexpected data %s", got.Data)
	}
}

func TestHandleCallTool_MissingArguments(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_query_text", `{"arguments":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Success bool `json:"success"`
		Details struct {
			ErrorType string   `json:"error_type"`
			Missing   []string `json:"missing"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error response not JSON: %v", err)
	}
	if got.Details.ErrorType != "missing_arguments" {
		t.Errorf("expected missing_arguments, got %s", got.Details.ErrorType)
	}
	if len(got.Details.Missing) != 1 || got.Details.Missing[0] != "query" {
		t.Errorf("expected missing [query], got %v", got.Details.Missing)
	}
}

func TestHandleCallTool_WrongNamespacePrefix(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1", "rag2")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag2_get_health", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for name mismatch, got %d", rec.Code)
	}
}

func TestHandleCallTool_UnknownOperation(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_fly_to_moon", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown operation, got %d", rec.Code)
	}
}

func TestHandleCallTool_BackendErrorRelayed(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limited"}`))
	}, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_get_documents", `{}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected backend 429 to be relayed, got %d", rec.Code)
	}

	var got struct {
		Details struct {
			ErrorType  string          `json:"error_type"`
			StatusCode int             `json:"status_code"`
			Response   json.RawMessage `json:"response_data"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("error response not JSON: %v", err)
	}
	if got.Details.ErrorType != "backend_api_failure" {
		t.Errorf("expected backend_api_failure, got %s", got.Details.ErrorType)
	}
	if got.Details.StatusCode != 429 {
		t.Errorf("expected status 429, got %d", got.Details.StatusCode)
	}
	if string(got.Details.Response) != `{"detail":"rate limited"}` {
		t.Errorf("backend payload not preserved: %s", got.Details.Response)
	}
}

func TestHandleCallTool_StreamFlagOnNonStreaming(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_query_text", `{"arguments":{"query":"q"},"stream":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for stream flag on non-streaming op, got %d", rec.Code)
	}
}

func TestHandleCallTool_Streaming(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_query_text_stream", `{"arguments":{"query":"q"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("expected NDJSON content type, got %s", ct)
	}

	type record struct {
		Type   string `json:"type"`
		Data   string `json:"data"`
		Status string `json:"status"`
	}
	var records []record
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("stream line not JSON: %v", err)
		}
		records = append(records, rec)
	}

	if len(records) != 3 {
		t.Fatalf("expected 2 chunks + done, got %v", records)
	}
	if records[0].Type != "chunk" || records[0].Data != `{"response":"alpha"}` {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].Type != "chunk" || records[1].Data != `{"response":"beta"}` {
		t.Errorf("unexpected second record %+v", records[1])
	}
	if records[2].Type != "done" || records[2].Status != "completed" {
		t.Errorf("expected terminal done record, got %+v", records[2])
	}
}

func TestHandleCallTool_StreamingBackendDown(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"down"}`))
	}, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_query_text_stream", `{"arguments":{"query":"q"}}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("pre-stream failure should be a plain error response, got %d", rec.Code)
	}
}

func TestHandleCallTool_InvalidBody(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodPost, "/mcp/rag1/rag1_get_health", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestHandleNotFound(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("404 should be JSON, got %s", ct)
	}
}

func TestCorrelationIDHeader(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected a generated correlation ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "req-42" {
		t.Errorf("expected propagated correlation ID req-42, got %q", got)
	}
}

func TestStreamableMCPEndpoint_ListTools(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1")

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	req := httptest.NewRequest(http.MethodPost, "/mcp/rag1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "rag1_query_text") {
		t.Errorf("tool listing should carry namespaced names, got %s", rec.Body.String())
	}
}

func TestConcurrentCalls(t *testing.T) {
	s := newTestServer(t, defaultBackend, "rag1", "rag2")

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		ns := "rag1"
		if i%2 == 1 {
			ns = "rag2"
		}
		go func(ns string) {
			rec := doRequest(t, s, http.MethodPost, "/mcp/"+ns+"/"+ns+"_get_health", `{}`)
			if rec.Code != http.StatusOK {
				errs <- fmt.Errorf("%s: status %d", ns, rec.Code)
				return
			}
			errs <- nil
		}(ns)
	}
	for i := 0; i < 20; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
