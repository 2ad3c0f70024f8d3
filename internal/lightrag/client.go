// Package lightrag is the HTTP client for a single LightRAG backend instance.
// The gateway holds one Client per configured namespace; every method is one
// REST call with the verb and body shape fixed by the backend contract.
package lightrag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
)

// Client communicates with one LightRAG server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// streamClient has no fixed timeout: a streamed generation may outlive
	// the per-call budget, and cancellation comes from the request context.
	streamClient *http.Client
	logger       *common.Logger
}

// New creates a client for the given LightRAG base URL. An empty apiKey
// disables the X-API-Key header. The timeout bounds every non-streaming call.
func New(baseURL, apiKey string, timeout time.Duration, logger *common.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: timeout, Transport: transport},
		streamClient: &http.Client{Transport: transport},
		logger:       logger,
	}
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases pooled connections to the backend.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// --- Request plumbing ---

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return req, nil
}

// do executes a request and returns the raw response body, classifying
// transport and status failures into typed errors.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("LightRAG request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Str("url", req.URL.String()).Dur("duration", duration).Msg("LightRAG request failed")
		return nil, classifyTransport(err, req.URL.String())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindConnection, "failed to read response from %s: %v", req.URL.String(), err)
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Int("bytes", len(body)).
		Msg("LightRAG response")

	if resp.StatusCode >= 400 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	if len(body) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(body) {
		return nil, NewError(KindBackendAPI, "invalid JSON response from %s", req.URL.String())
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, NewError(KindConnection, "failed to build request: %v", err)
	}
	return c.do(req)
}

// doJSON sends method with an optional JSON body. DELETE with a non-nil body
// goes through here too: the backend's delete endpoints require a JSON body,
// not just a path parameter.
func (c *Client) doJSON(ctx context.Context, method, path string, data any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, NewError(KindValidation, "failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return nil, NewError(KindConnection, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, path, data)
}

func (c *Client) del(ctx context.Context, path string, data any) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodDelete, path, data)
}

// --- Document management ---

// InsertText inserts a single text document. The optional title becomes the
// file source ("{title}.txt"); otherwise a generic name is used so the
// backend never records a null file path.
func (c *Client) InsertText(ctx context.Context, text, title string) (json.RawMessage, error) {
	fileSource := "text_input.txt"
	if title != "" {
		fileSource = title + ".txt"
	}
	return c.post(ctx, "/documents/text", insertTextRequest{Text: text, FileSource: fileSource})
}

// InsertTexts inserts a batch of text documents.
func (c *Client) InsertTexts(ctx context.Context, docs []TextDocument) (json.RawMessage, error) {
	texts := make([]string, len(docs))
	sources := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
		sources[i] = fmt.Sprintf("text_input_%d.txt", i+1)
	}
	return c.post(ctx, "/documents/texts", insertTextsRequest{Texts: texts, FileSources: sources})
}

// UploadDocument uploads a local file as multipart form data. The file must
// exist and be readable before any network call is made.
func (c *Client) UploadDocument(ctx context.Context, filePath string) (json.RawMessage, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewError(KindValidation, "file not found: %s", filePath)
		}
		return nil, NewError(KindValidation, "cannot read file %s: %v", filePath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, NewError(KindConnection, "failed to build upload: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, NewError(KindValidation, "failed to read file %s: %v", filePath, err)
	}
	if err := mw.Close(); err != nil {
		return nil, NewError(KindConnection, "failed to build upload: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/documents/upload", &buf)
	if err != nil {
		return nil, NewError(KindConnection, "failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// ScanDocuments triggers a scan for new documents on the backend.
func (c *Client) ScanDocuments(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, "/documents/scan", nil)
}

// GetDocuments retrieves all documents.
func (c *Client) GetDocuments(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/documents", nil)
}

// GetDocumentsPaginated retrieves one page of documents.
func (c *Client) GetDocumentsPaginated(ctx context.Context, page, pageSize int, statusFilter string) (json.RawMessage, error) {
	return c.post(ctx, "/documents/paginated", paginatedDocsRequest{
		Page:         page,
		PageSize:     pageSize,
		StatusFilter: statusFilter,
	})
}

// DeleteDocuments deletes documents by ID. The backend requires the IDs and
// flags in a JSON body on the DELETE verb.
func (c *Client) DeleteDocuments(ctx context.Context, docIDs []string, deleteFile, deleteLLMCache bool) (json.RawMessage, error) {
	return c.del(ctx, "/documents/delete_document", deleteDocRequest{
		DocIDs:         docIDs,
		DeleteFile:     deleteFile,
		DeleteLLMCache: deleteLLMCache,
	})
}

// ClearDocuments removes all documents from the backend.
func (c *Client) ClearDocuments(ctx context.Context) (json.RawMessage, error) {
	return c.del(ctx, "/documents", nil)
}

// --- Query ---

// QueryText runs a retrieval-augmented query and returns the full response.
func (c *Client) QueryText(ctx context.Context, req QueryRequest) (json.RawMessage, error) {
	return c.post(ctx, "/query", req)
}

// --- Knowledge graph ---

// GetKnowledgeGraph retrieves the graph for a label ("*" for everything).
func (c *Client) GetKnowledgeGraph(ctx context.Context, label string) (json.RawMessage, error) {
	if label == "" {
		label = "*"
	}
	return c.get(ctx, "/graphs", url.Values{"label": []string{label}})
}

// GetGraphLabels lists graph labels. The backend returns a bare array, which
// is normalized to {"labels": [...]} for a uniform envelope.
func (c *Client) GetGraphLabels(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/graph/label/list", nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		wrapped, err := json.Marshal(map[string]json.RawMessage{"labels": body})
		if err != nil {
			return nil, NewError(KindBackendAPI, "failed to normalize labels response: %v", err)
		}
		return wrapped, nil
	}
	return body, nil
}

// CheckEntityExists checks whether a named entity exists in the graph.
func (c *Client) CheckEntityExists(ctx context.Context, entityName string) (json.RawMessage, error) {
	return c.get(ctx, "/graph/entity/exists", url.Values{"name": []string{entityName}})
}

// UpdateEntity updates entity properties. The entity ID doubles as the name
// when no separate name is given.
func (c *Client) UpdateEntity(ctx context.Context, entityID string, properties map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/graph/entity/edit", entityUpdateRequest{
		EntityID:    entityID,
		EntityName:  entityID,
		UpdatedData: properties,
	})
}

// UpdateRelation updates the relation between two entities.
func (c *Client) UpdateRelation(ctx context.Context, sourceID, targetID string, updated map[string]any) (json.RawMessage, error) {
	return c.post(ctx, "/graph/relation/edit", relationUpdateRequest{
		SourceID:    sourceID,
		TargetID:    targetID,
		UpdatedData: updated,
	})
}

// DeleteEntity removes an entity from the graph.
func (c *Client) DeleteEntity(ctx context.Context, entityID string) (json.RawMessage, error) {
	return c.del(ctx, "/documents/delete_entity", deleteEntityRequest{
		EntityID:   entityID,
		EntityName: entityID,
	})
}

// DeleteRelation removes a relation from the graph.
func (c *Client) DeleteRelation(ctx context.Context, relationID string) (json.RawMessage, error) {
	return c.del(ctx, "/documents/delete_relation", deleteRelationRequest{
		RelationID:   relationID,
		SourceEntity: "unknown",
		TargetEntity: "unknown",
	})
}

// --- System management ---

// GetPipelineStatus reports the ingestion pipeline state.
func (c *Client) GetPipelineStatus(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/documents/pipeline_status", nil)
}

// GetTrackStatus reports the processing status for one upload track ID.
func (c *Client) GetTrackStatus(ctx context.Context, trackID string) (json.RawMessage, error) {
	return c.get(ctx, "/documents/track_status/"+url.PathEscape(trackID), nil)
}

// GetDocumentStatusCounts returns document counts grouped by status.
func (c *Client) GetDocumentStatusCounts(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/documents/status_counts", nil)
}

// ClearCache clears backend caches; cacheType is optional.
func (c *Client) ClearCache(ctx context.Context, cacheType string) (json.RawMessage, error) {
	if cacheType == "" {
		return c.post(ctx, "/documents/clear_cache", map[string]any{})
	}
	return c.post(ctx, "/documents/clear_cache", clearCacheRequest{CacheType: cacheType})
}

// GetHealth checks backend server health.
func (c *Client) GetHealth(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/health", nil)
}
