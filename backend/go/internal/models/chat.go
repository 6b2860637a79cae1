package models

// Chat message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is one entry of a chat session history.
type ChatMessage struct {
	Sender  string   `json:"sender"`
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// UpdateNewsResponse is the JSON body returned by /update_news/. Articles holds full
// articles in test mode and titles otherwise.
type UpdateNewsResponse struct {
	Status   string `json:"status"`
	TestMode bool   `json:"modo_teste"`
	Count    int    `json:"qtde_artigos"`
	Articles any    `json:"artigos"`
}
