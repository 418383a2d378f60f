// Package app provides models that are needed by vector.
package app

import "time"

// EightHrs is the retention unit for stored front page stories.
const EightHrs = 8 * time.Hour

const (
	// DefaultPageSize is the number of stories per front page.
	DefaultPageSize = 50
	// DefaultCommentLimit bounds how many comments are fetched per story.
	DefaultCommentLimit = 100
	// DefaultFetchWorkers is the worker count for story fetches.
	DefaultFetchWorkers = 4
	// DefaultFetchBatch is how many comment fetches are in flight at once.
	DefaultFetchBatch = 10
	// MaxArticleChars caps extracted article text.
	MaxArticleChars = 20000
)
