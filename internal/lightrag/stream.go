package lightrag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// QueryStream is a lazily-consumed streamed query response. Chunks arrive as
// the backend produces them; the stream ends with io.EOF. Close releases the
// underlying connection and is safe to call more than once.
type QueryStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// QueryTextStream runs a streamed retrieval-augmented query. The returned
// stream is bound to ctx: cancelling it closes the backend connection
// promptly. Callers must Close the stream when done.
func (c *Client) QueryTextStream(ctx context.Context, req QueryRequest) (*QueryStream, error) {
	req.Stream = true
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, NewError(KindValidation, "failed to marshal request: %v", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/query/stream", bytes.NewReader(jsonData))
	if err != nil {
		return nil, NewError(KindConnection, "failed to build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug().
		Str("method", http.MethodPost).
		Str("url", httpReq.URL.String()).
		Msg("LightRAG stream request")

	start := time.Now()
	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("url", httpReq.URL.String()).Msg("LightRAG stream request failed")
		return nil, classifyTransport(err, httpReq.URL.String())
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		return nil, classifyStatus(resp.StatusCode, body)
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("LightRAG stream open")

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &QueryStream{body: resp.Body, scanner: scanner}, nil
}

// Next returns the next non-blank chunk, or io.EOF when the backend closes
// the stream.
func (s *QueryStream) Next() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		return line, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", NewError(KindConnection, "stream read failed: %v", err)
	}
	return "", io.EOF
}

// Close releases the backend connection.
func (s *QueryStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
