package extractor

import "strings"

// NotArticle is the sentinel the model returns for pages that are not news articles.
const NotArticle = "NAO_EH_ARTIGO"

const (
	pageStart = "\n--- INÍCIO DO TEXTO DA PÁGINA ---\n"
	pageEnd   = "\n--- FIM DO TEXTO DA PÁGINA ---\n"
)

var instructions = []string{
	"Você é um especialista em extração de dados de páginas web.",
	"Analise o seguinte texto extraído de um HTML e retorne APENAS o texto limpo e coeso do artigo principal.",
	"Ignore qualquer texto de menu, anúncios, links de 'leia também', avisos de cookies ou rodapés.",
	"Se o conteúdo não parecer um artigo de notícia completo (ex: é apenas uma lista de links, uma galeria de fotos ou uma página de erro), retorne EXATAMENTE a palavra '" + NotArticle + "'.",
}

// BuildPrompt renders the extraction prompt around the pre-cleaned page text.
func BuildPrompt(pageText string) string {
	parts := make([]string, 0, len(instructions)+4)
	parts = append(parts, instructions...)
	parts = append(parts, pageStart, pageText, pageEnd, "ARTIGO EXTRAÍDO:")
	return strings.Join(parts, "\n")
}
