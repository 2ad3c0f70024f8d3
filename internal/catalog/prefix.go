// Package catalog holds the fixed operation catalog and the tool-name codec
// that multiplexes several backend namespaces onto one tool surface.
package catalog

import (
	"strings"

	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// AddPrefix combines a namespace and a bare operation name into a single
// dispatchable tool identifier. An empty namespace is the identity, which
// keeps single-instance deployments backward compatible with bare names.
func AddPrefix(name, namespace string) string {
	if namespace == "" {
		return name
	}
	return namespace + "_" + name
}

// RemovePrefix strips a known namespace from a tool identifier. It only
// strips the namespace it is given — never a heuristic split on the first
// underscore, since bare operation names may start with any token. A name
// that does not carry the expected prefix is a name_mismatch error.
func RemovePrefix(name, namespace string) (string, error) {
	if namespace == "" {
		return name, nil
	}
	prefix := namespace + "_"
	if !strings.HasPrefix(name, prefix) {
		return "", lightrag.NewError(lightrag.KindNameMismatch,
			"tool name %q does not match namespace %q", name, namespace)
	}
	return name[len(prefix):], nil
}

// AddDescriptionMarker annotates a tool description with a bracketed
// namespace marker so multiplexed listings stay readable.
func AddDescriptionMarker(description, namespace string) string {
	if namespace == "" {
		return description
	}
	return "[" + namespace + "] " + description
}
