package catalog

import (
	"slices"
	"strings"

	"github.com/bobmcallan/lightrag-gateway/internal/lightrag"
)

// ValidateArguments checks args against the operation's descriptor before any
// network call. Every required field must be present and non-null; unknown
// fields are ignored for forward compatibility. A handful of operations carry
// extra shape checks beyond presence.
func ValidateArguments(d Descriptor, args map[string]any) error {
	var missing []string
	for _, field := range d.Required {
		if v, ok := args[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return lightrag.NewMissingArguments(d.Name, missing)
	}

	switch d.Op {
	case OpGetDocumentsPaginated:
		return validatePagination(args)
	case OpQueryText, OpQueryTextStream:
		return validateQuery(args)
	case OpDeleteDocument:
		return validateDeleteDocument(args)
	}
	return nil
}

func validatePagination(args map[string]any) error {
	page, ok := intValue(args["page"])
	if !ok || page < 1 {
		return lightrag.NewError(lightrag.KindValidation, "page must be a positive integer")
	}
	pageSize, ok := intValue(args["page_size"])
	if !ok || pageSize < 1 || pageSize > 100 {
		return lightrag.NewError(lightrag.KindValidation, "page_size must be an integer between 1 and 100")
	}
	return nil
}

func validateQuery(args map[string]any) error {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return lightrag.NewError(lightrag.KindValidation, "query cannot be empty")
	}
	mode := StringArg(args, "mode", "hybrid")
	if !slices.Contains(QueryModes, mode) {
		return lightrag.NewError(lightrag.KindValidation,
			"invalid query mode %q, must be one of: %v", mode, QueryModes)
	}
	return nil
}

// validateDeleteDocument enforces the single-vs-batch contract: exactly one
// of document_id and document_ids, with a non-empty list of non-blank IDs.
func validateDeleteDocument(args map[string]any) error {
	_, hasSingle := args["document_id"]
	_, hasBatch := args["document_ids"]

	if !hasSingle && !hasBatch {
		return lightrag.NewError(lightrag.KindValidation,
			"either 'document_id' or 'document_ids' must be provided")
	}
	if hasSingle && hasBatch {
		return lightrag.NewError(lightrag.KindValidation,
			"cannot specify both 'document_id' and 'document_ids', use one or the other")
	}

	if hasSingle {
		id, ok := args["document_id"].(string)
		if !ok || strings.TrimSpace(id) == "" {
			return lightrag.NewError(lightrag.KindValidation, "'document_id' must be a non-empty string")
		}
	}
	if hasBatch {
		raw, ok := args["document_ids"].([]any)
		if !ok {
			return lightrag.NewError(lightrag.KindValidation, "'document_ids' must be an array")
		}
		if len(raw) == 0 {
			return lightrag.NewError(lightrag.KindValidation, "'document_ids' cannot be an empty array")
		}
		for _, item := range raw {
			id, ok := item.(string)
			if !ok || strings.TrimSpace(id) == "" {
				return lightrag.NewError(lightrag.KindValidation,
					"all document IDs in 'document_ids' must be non-empty strings")
			}
		}
	}

	for _, flag := range []string{"delete_file", "delete_llm_cache"} {
		if v, ok := args[flag]; ok {
			if _, isBool := v.(bool); !isBool {
				return lightrag.NewError(lightrag.KindValidation, "'%s' must be a boolean", flag)
			}
		}
	}
	return nil
}
