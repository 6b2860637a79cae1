package schema

// Metadata keys stored with every indexed article.
const (
	MetadataKeySource = "fonte"
	MetadataKeyTitle  = "titulo"
	MetadataKeyLink   = "link"
	// MetadataKeySourceAlt is the generic key some loaders use instead of "fonte".
	MetadataKeySourceAlt = "source"
)

// Document is the central data structure representing a piece of text and its associated data.
// It is the primary data carrier throughout the RAG pipeline.
type Document struct {
	// ID is the unique identifier for this document.
	ID string `json:"id"`

	// Text is the embedded string, "{title} - {text}" for articles.
	Text string `json:"text"`

	// Embedding is the vector representation of the text. It is persisted separately
	// from the JSON docstore.
	Embedding []float32 `json:"-"`

	// Metadata holds arbitrary data about the document.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MetadataString returns the string value stored under key, or "".
func (d *Document) MetadataString(key string) string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	s, _ := d.Metadata[key].(string)
	return s
}

// ScoredDocument is a search hit.
type ScoredDocument struct {
	Document *Document
	Score    float64
}
