// Package analyze generates reports and chat answers about stories.
package analyze

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mseshachalam/vector/app"
)

const (
	// OpReport marks usage rows from report generation.
	OpReport = "report_generation"
	// OpChat marks usage rows from chat queries.
	OpChat = "chat_query"
)

const (
	reportArticleChars = 4000
	reportComments     = 30
	chatArticleChars   = 12000
	chatComments       = 100
)

// New returns the generator selected by conf.Provider. The variant set is
// closed; an unknown value is a construction error.
func New(conf *app.Config) (app.Generator, error) {
	switch conf.Provider {
	case "", "ollama":
		return NewOllama(conf.OllamaHost, conf.OllamaModel, nil), nil
	case "openai":
		if conf.OpenAIAPIKey == "" {
			return nil, errors.New("analyze: openai provider needs OPENAI_API_KEY")
		}
		return NewOpenAI(conf.OpenAIAPIKey, conf.OpenAIModel, nil), nil
	case "tldr":
		return NewTLDR(), nil
	}
	return nil, fmt.Errorf("analyze: unknown provider %q", conf.Provider)
}

// reportPrompt builds the analysis prompt for a fresh report.
func reportPrompt(story *app.Story, article string, comments []*app.Comment) string {
	var sb strings.Builder
	sb.WriteString("You are an expert tech analyst. Analyze this Hacker News submission.\n\n")
	sb.WriteString("Metadata:\n")
	fmt.Fprintf(&sb, "Title: %s\n", story.Title)
	fmt.Fprintf(&sb, "URL: %s\n", story.URL)
	fmt.Fprintf(&sb, "Score: %d\n\n", story.Score)
	sb.WriteString("Article Content (Excerpt):\n")
	sb.WriteString(clip(article, reportArticleChars))
	sb.WriteString("\n\nTop Comments:\n")
	sb.WriteString(commentLines(comments, reportComments, false))
	sb.WriteString("\n\nTask:\nCreate a detailed Markdown summary. Use the following structure EXACTLY:\n\n")
	fmt.Fprintf(&sb, "# %s\n\n", story.Title)
	sb.WriteString("## Summary\n(A concise 3-sentence summary of the article)\n\n")
	sb.WriteString("## Key Arguments\n(Bulleted list of pros, cons, or key technical points discussed in article and comments)\n\n")
	sb.WriteString("## Community Sentiment\n(What are the commenters saying? What is the controversy? What are the top insights?)\n\n")
	sb.WriteString("## Deep Dive Hooks\n(List 3 specific complex topics mentioned in this thread that the user might want to ask more about)\n")
	return sb.String()
}

// chatPrompt builds the follow-up prompt from a bundle's full context.
func chatPrompt(b *app.ReportBundle, question string) string {
	var sb strings.Builder
	sb.WriteString("This is the article:\n---\n")
	fmt.Fprintf(&sb, "TITLE: %s\n", b.Title)
	sb.WriteString("CONTENT:\n")
	sb.WriteString(clip(b.Article.Text, chatArticleChars))
	sb.WriteString("\n---\n\nAnd these are the comments (with hierarchy):\n---\n")
	sb.WriteString(commentLines(b.Comments, chatComments, true))
	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "The user wants to know more about: %s\n\n", question)
	sb.WriteString("Task:\nProvide a detailed, well-structured answer based strictly on the provided context.\n")
	sb.WriteString("If the information is not in the article or comments, state that.\nUse Markdown for structure.\n")
	return sb.String()
}

// commentLines renders up to max comments as bullet lines, optionally
// indented by depth to keep the reply hierarchy visible.
func commentLines(comments []*app.Comment, max int, indent bool) string {
	var sb strings.Builder
	for i, c := range comments {
		if i >= max {
			break
		}
		if indent {
			sb.WriteString(strings.Repeat("  ", c.Depth))
		}
		by := c.By
		if by == "" {
			by = "anon"
		}
		fmt.Fprintf(&sb, "- %s: %s\n", by, c.Text)
	}
	return sb.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
