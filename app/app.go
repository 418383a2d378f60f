package app

import (
	"context"
	"time"
)

// Usage is the token accounting of one generator invocation.
type Usage struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Op           string
}

// Generator produces a report for a story and answers follow-up questions
// about an already generated bundle.
type Generator interface {
	Generate(ctx context.Context, story *Story, article string, comments []*Comment) (string, Usage, error)
	Chat(ctx context.Context, bundle *ReportBundle, question string) (string, Usage, error)
}

// Recorder records generator usage.
type Recorder interface {
	Record(u Usage) error
}
