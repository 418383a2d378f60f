// Package article turns a story's URL into readable plain text.
package article

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"jaytaylor.com/html2text"

	"github.com/mseshachalam/vector/app"
)

// Some sites answer bots with empty pages without a browser user agent.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"

// maxBodyBytes bounds how much of a page is read.
const maxBodyBytes = 4 << 20

// Extractor downloads pages and reduces them to main-content text. It never
// fails hard; the status on the returned ArticleText says what happened.
type Extractor struct {
	HTTPClient *http.Client
	UserAgent  string
	MaxChars   int
}

// NewExtractor returns an extractor with the default transport and limits.
func NewExtractor(hc *http.Client) *Extractor {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Extractor{
		HTTPClient: hc,
		UserAgent:  defaultUserAgent,
		MaxChars:   app.MaxArticleChars,
	}
}

// Extract fetches link and strips it down to article text. Non-text content
// is skipped from the response header, before the body is read. A failure
// here never blocks report generation; the article is optional context.
func (e *Extractor) Extract(ctx context.Context, link string) app.ArticleText {
	if strings.TrimSpace(link) == "" {
		return app.ArticleText{Status: app.ExtractSkipped}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return app.ArticleText{URL: link, Status: app.ExtractFailed}
	}
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return app.ArticleText{URL: link, Status: app.ExtractFailed}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return app.ArticleText{URL: link, Status: app.ExtractFailed}
	}
	if !textLike(resp.Header.Get("Content-Type")) {
		return app.ArticleText{URL: link, Status: app.ExtractSkipped}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return app.ArticleText{URL: link, Status: app.ExtractFailed}
	}

	text := e.clean(body, resp)
	if text == "" {
		return app.ArticleText{URL: link, Status: app.ExtractEmpty}
	}
	if e.MaxChars > 0 && len(text) > e.MaxChars {
		text = text[:e.MaxChars]
	}
	return app.ArticleText{URL: link, Text: text, Status: app.ExtractOK}
}

// clean runs readability over the page and falls back to a plain html-to-text
// pass when readability finds no main content.
func (e *Extractor) clean(body []byte, resp *http.Response) string {
	parsed, err := readability.FromReader(bytes.NewReader(body), resp.Request.URL)
	if err == nil {
		if text := strings.TrimSpace(parsed.TextContent); text != "" {
			return text
		}
	}

	text, err := html2text.FromString(string(body), html2text.Options{OmitLinks: true})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// textLike accepts HTML-ish and plain text content types. An absent or
// unparsable header is let through; the cleaning pass decides then.
func textLike(ct string) bool {
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return true
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/xhtml+xml", "application/xml":
		return true
	}
	return false
}
