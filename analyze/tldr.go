package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JesusIslam/tldr"

	"github.com/mseshachalam/vector/app"
)

// TLDR is the offline variant: extractive summaries computed locally, no
// model server involved. Useful when neither ollama nor an API key is
// around; token counts are always zero.
type TLDR struct {
	Sentences int
}

// NewTLDR returns the offline generator.
func NewTLDR() *TLDR {
	return &TLDR{Sentences: 3}
}

// Generate builds a report from an extractive summary of the article plus
// the top comments verbatim.
func (t *TLDR) Generate(ctx context.Context, story *app.Story, article string, comments []*app.Comment) (string, app.Usage, error) {
	start := time.Now()

	summary := "No article text available."
	if strings.TrimSpace(article) != "" {
		summary = clip(article, 500)
		bag := tldr.New()
		if s, err := bag.Summarize(article, t.Sentences); err == nil && strings.TrimSpace(s) != "" {
			summary = strings.TrimSpace(s)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", story.Title)
	sb.WriteString("## Summary\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n## Community Sentiment\n")
	if len(comments) == 0 {
		sb.WriteString("No comments fetched.\n")
	} else {
		for i, c := range comments {
			if i >= 10 {
				break
			}
			by := c.By
			if by == "" {
				by = "anon"
			}
			fmt.Fprintf(&sb, "- %s: %s\n", by, clip(c.Text, 280))
		}
	}

	usage := app.Usage{Model: "tldr", Duration: time.Since(start), Op: OpReport}
	return sb.String(), usage, nil
}

// Chat greps the cached context for the question's keywords; there is no
// model to reason with offline.
func (t *TLDR) Chat(ctx context.Context, b *app.ReportBundle, question string) (string, app.Usage, error) {
	start := time.Now()

	var words []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.Trim(w, ".,?!\"'")
		if len(w) > 3 {
			words = append(words, w)
		}
	}

	var hits []string
	for _, c := range b.Comments {
		text := strings.ToLower(c.Text)
		for _, w := range words {
			if strings.Contains(text, w) {
				by := c.By
				if by == "" {
					by = "anon"
				}
				hits = append(hits, fmt.Sprintf("- %s: %s", by, clip(c.Text, 280)))
				break
			}
		}
		if len(hits) >= 5 {
			break
		}
	}

	usage := app.Usage{Model: "tldr", Duration: time.Since(start), Op: OpChat}
	if len(hits) == 0 {
		return "Nothing in the cached article or comments matches that question.", usage, nil
	}
	return "Comments mentioning that:\n\n" + strings.Join(hits, "\n"), usage, nil
}
