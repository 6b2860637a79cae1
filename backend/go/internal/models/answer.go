package models

// Source is one cited document in an answer.
type Source struct {
	Label   string `json:"fonte"`
	Snippet string `json:"snippet"`
}

// Answer is the answerer's reply. Sources holds at most three entries.
type Answer struct {
	Answer  string   `json:"resposta"`
	Sources []Source `json:"fontes"`
}

// AskResponse is the JSON body returned by /ask/.
type AskResponse struct {
	Question string   `json:"pergunta"`
	Answer   string   `json:"resposta"`
	Sources  []Source `json:"fontes"`
}
