package models

import (
	"fmt"
	"time"
)

// DefaultTitle is used when the search result carries no title.
const DefaultTitle = "Título não encontrado"

// Article is a news article accepted by the crawler. It is immutable once stored.
// The JSON keys are the bronze layer's on-disk format.
type Article struct {
	Source      string `json:"fonte"`
	Title       string `json:"titulo"`
	Link        string `json:"link"`
	Text        string `json:"texto"`
	CollectedAt string `json:"data_coleta"`
	OriginQuery string `json:"query_origem"`
}

// TimestampLayout renders CollectedAt as an ISO-8601 local timestamp with microseconds
// and no zone, the format produced by the historical bronze files.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// NewArticle builds an article stamped with the given collection time.
func NewArticle(source, title, link, text, query string, at time.Time) Article {
	if title == "" {
		title = DefaultTitle
	}
	return Article{
		Source:      source,
		Title:       title,
		Link:        link,
		Text:        text,
		CollectedAt: at.Format(TimestampLayout),
		OriginQuery: query,
	}
}

// Document returns the string that gets embedded into the vector index.
func (a Article) Document() string {
	return fmt.Sprintf("%s - %s", a.Title, a.Text)
}

// Metadata returns the document metadata stored alongside the vector.
func (a Article) Metadata() map[string]any {
	return map[string]any{
		"fonte":  a.Source,
		"titulo": a.Title,
		"link":   a.Link,
	}
}
