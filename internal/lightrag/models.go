package lightrag

// Request body shapes for the LightRAG REST API. These are fixed by the
// backend contract and must not drift: delete operations in particular send a
// JSON body on the DELETE verb.

// TextDocument is one document in an insert_texts batch.
type TextDocument struct {
	Title    string         `json:"title,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type insertTextRequest struct {
	Text       string `json:"text"`
	FileSource string `json:"file_source"`
}

type insertTextsRequest struct {
	Texts       []string `json:"texts"`
	FileSources []string `json:"file_sources"`
}

type paginatedDocsRequest struct {
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
	StatusFilter string `json:"status_filter,omitempty"`
}

type deleteDocRequest struct {
	DocIDs         []string `json:"doc_ids"`
	DeleteFile     bool     `json:"delete_file"`
	DeleteLLMCache bool     `json:"delete_llm_cache"`
}

// QueryRequest is the body for /query and /query/stream.
type QueryRequest struct {
	Query           string `json:"query"`
	Mode            string `json:"mode"`
	OnlyNeedContext bool   `json:"only_need_context"`
	Stream          bool   `json:"stream,omitempty"`
}

type entityUpdateRequest struct {
	EntityID    string         `json:"entity_id"`
	EntityName  string         `json:"entity_name"`
	UpdatedData map[string]any `json:"updated_data"`
}

type relationUpdateRequest struct {
	SourceID    string         `json:"source_id"`
	TargetID    string         `json:"target_id"`
	UpdatedData map[string]any `json:"updated_data"`
}

type deleteEntityRequest struct {
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
}

type deleteRelationRequest struct {
	RelationID   string `json:"relation_id"`
	SourceEntity string `json:"source_entity"`
	TargetEntity string `json:"target_entity"`
}

type clearCacheRequest struct {
	CacheType string `json:"cache_type,omitempty"`
}
