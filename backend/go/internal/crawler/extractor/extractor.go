// Package extractor turns a news URL into the clean text of its main article.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"PerguntaQueRespondo/backend/go/internal/config"
	"PerguntaQueRespondo/backend/go/internal/llm"
	"PerguntaQueRespondo/backend/go/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
)

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 10 << 20

// Options tune the extraction gates.
type Options struct {
	Timeout         time.Duration
	UserAgent       string
	MinPageChars    int // pre-cleaned text shorter than this never reaches the LLM
	MaxPromptChars  int // page text sent to the LLM
	MinArticleChars int // shorter LLM output is rejected
}

// OptionsFromConfig maps the crawler section of the config.
func OptionsFromConfig(cfg config.CrawlerConfig) Options {
	return Options{
		Timeout:         config.Duration(cfg.FetchTimeout, 20*time.Second),
		UserAgent:       cfg.UserAgent,
		MinPageChars:    cfg.MinPageChars,
		MaxPromptChars:  cfg.MaxPromptChars,
		MinArticleChars: cfg.MinArticleChars,
	}
}

// Extractor fetches pages and asks the LLM for the main article text.
type Extractor struct {
	httpClient *http.Client
	model      llm.LLM
	opts       Options
	log        *logger.Logger
}

// New creates an Extractor.
func New(model llm.LLM, opts Options, log *logger.Logger) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: opts.Timeout},
		model:      model,
		opts:       opts,
		log:        log,
	}
}

// Extract returns the cleaned article text and true, or false when the page could not
// be fetched or is not a news article. Failures are logged, never returned.
func (e *Extractor) Extract(ctx context.Context, url string) (string, bool) {
	log := e.log.WithField("url", url)
	log.Info("extracting article")

	body, ctype, err := e.fetch(ctx, url)
	if err != nil {
		log.WithError(err).Error("failed to fetch page")
		return "", false
	}

	if mtype := mimetype.Detect(body); !isText(mtype) {
		log.WithField("mime", mtype.String()).Warn("discarded: not a text page")
		return "", false
	}

	pageText, err := CleanHTML(decode(body, ctype))
	if err != nil {
		log.WithError(err).Error("failed to clean page")
		return "", false
	}
	if utf8.RuneCountInString(pageText) < e.opts.MinPageChars {
		log.Warn("discarded: pre-cleaned content too short")
		return "", false
	}

	prompt := BuildPrompt(truncateRunes(pageText, e.opts.MaxPromptChars))
	out, err := e.model.Generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("LLM extraction failed")
		return "", false
	}

	text := strings.TrimSpace(out)
	if strings.Contains(text, NotArticle) || utf8.RuneCountInString(text) < e.opts.MinArticleChars {
		log.Info("verdict: not a valid article")
		return "", false
	}
	log.Info("verdict: article extracted")
	return text, true
}

func (e *Extractor) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return body, resp.Header.Get("Content-Type"), err
}

// decode converts the page to UTF-8 using the Content-Type charset, falling back to
// <meta> declarations and content sniffing. Unknown encodings pass through unchanged.
func decode(body []byte, ctype string) io.Reader {
	r, err := charset.NewReader(bytes.NewReader(body), ctype)
	if err != nil {
		return bytes.NewReader(body)
	}
	return r
}

// isText accepts text/plain and its descendants (HTML, XHTML, XML).
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
