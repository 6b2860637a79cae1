package answerer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Fixed replies.
const (
	MsgDegraded      = "Não foi possível inicializar o mecanismo RAG."
	msgNoContextTmpl = "Não encontrei notícias específicas sobre '%s', mas posso trazer informações gerais sobre educação no DF."
	UnknownSource    = "Fonte desconhecida"
)

const promptTemplate = `Você é um assistente que responde perguntas sobre educação na região da RIDE-DF. Use o contexto fornecido para responder de forma precisa e concisa. Se a pergunta não estiver relacionada ao contexto, responda que não encontrou informações específicas sobre a pergunta. Não invente respostas.

CONTEXTO:
%s

PERGUNTA:
%s

RESPOSTA:
`

// NoContextMessage is the reply used when retrieval finds too little context.
func NoContextMessage(question string) string {
	return fmt.Sprintf(msgNoContextTmpl, question)
}

// BuildPrompt renders the answer prompt. Context passages are separated by blank lines.
func BuildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)
}

// Snippet returns the first n code points of text with newlines flattened, plus "...".
func Snippet(text string, n int) string {
	if utf8.RuneCountInString(text) > n {
		text = string([]rune(text)[:n])
	}
	return strings.ReplaceAll(text, "\n", " ") + "..."
}
