// Package routes holds the static namespace -> backend routing table. It is
// built once at startup and immutable afterwards, so concurrent lookups need
// no locking.
package routes

import (
	"time"

	"github.com/bobmcallan/lightrag-gateway/internal/common"
	"github.com/bobmcallan/lightrag-gateway/internal/config"
	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// Route binds one namespace to a backend client.
type Route struct {
	Namespace string
	Client    *lightrag.Client
}

// Table maps namespaces to backend clients, preserving configuration order
// for stable listings.
type Table struct {
	routes map[string]*Route
	order  []string
}

// Build constructs the table from parsed configuration. Each backend gets its
// own pooled HTTP client with the configured per-call timeout.
func Build(cfg *config.Config, logger *common.Logger) (*Table, error) {
	backends, err := cfg.Backends()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second
	t := &Table{routes: make(map[string]*Route, len(backends))}
	for _, b := range backends {
		t.routes[b.Namespace] = &Route{
			Namespace: b.Namespace,
			Client:    lightrag.New(b.BaseURL, b.APIKey, timeout, logger),
		}
		t.order = append(t.order, b.Namespace)
		logger.Info().
			Str("namespace", b.Namespace).
			Str("backend", b.BaseURL).
			Bool("api_key", b.APIKey != "").
			Msg("Configured backend route")
	}
	return t, nil
}

// Resolve looks up a namespace; the match is exact and case-sensitive.
func (t *Table) Resolve(namespace string) (*Route, error) {
	r, ok := t.routes[namespace]
	if !ok {
		return nil, lightrag.NewError(lightrag.KindUnknownNamespace,
			"no backend configured for namespace %q", namespace)
	}
	return r, nil
}

// Namespaces returns the configured namespaces in configuration order.
func (t *Table) Namespaces() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Close releases pooled backend connections.
func (t *Table) Close() {
	for _, ns := range t.order {
		t.routes[ns].Client.Close()
	}
}
