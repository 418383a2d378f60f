package app

import "time"

// ExtractStatus tells how article extraction went.
type ExtractStatus string

const (
	// ExtractOK means readable text was obtained.
	ExtractOK ExtractStatus = "success"
	// ExtractSkipped means the URL did not resolve to text-like content.
	ExtractSkipped ExtractStatus = "skipped-non-text"
	// ExtractFailed means the page could not be fetched.
	ExtractFailed ExtractStatus = "fetch-failed"
	// ExtractEmpty means nothing readable survived cleaning.
	ExtractEmpty ExtractStatus = "empty"
)

// ArticleText is the readable text pulled from a story's URL.
type ArticleText struct {
	URL    string        `json:"url"`
	Text   string        `json:"text"`
	Status ExtractStatus `json:"status"`
}

// ChatTurn is one entry of a report's chat transcript.
type ChatTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// ReportBundle is the persisted unit for one story: the generated report,
// the context it was generated from and the follow-up chat.
type ReportBundle struct {
	StoryID   int         `json:"storyId"`
	Title     string      `json:"title"`
	URL       string      `json:"url"`
	Report    string      `json:"report"`
	Article   ArticleText `json:"article"`
	Comments  []*Comment  `json:"comments"`
	Chat      []ChatTurn  `json:"chat"`
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	CreatedAt time.Time   `json:"createdAt"`
}
