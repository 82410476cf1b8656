package types

// Note is a free-form, content-addressed annotation stored on the same
// substrate as symbols (spec §3 "Content-addressed note store"). Dedup is
// by content_key (whitespace-normalized, case-folded content hash), so
// upserting identical content is idempotent.
type Note struct {
	ID                string    `json:"id"`
	Content           string    `json:"content"`
	ContentKey        string    `json:"content_key"`
	Tags              []string  `json:"tags"`
	EmbeddingProvider string    `json:"embedding_provider,omitempty"`
	EmbeddingModel    string    `json:"embedding_model,omitempty"`
	Embedding         []float32 `json:"embedding,omitempty"`
	CreatedAt         int64     `json:"created_at"`
}
