// Package flow is the logic of the app.
package flow

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mseshachalam/vector/app"
	"github.com/mseshachalam/vector/article"
	"github.com/mseshachalam/vector/dbp"
	"github.com/mseshachalam/vector/hn"
	"github.com/mseshachalam/vector/report"
)

// Flow wires the fetcher, extractor, cache and generator together.
type Flow struct {
	Client    *hn.Client
	Extractor *article.Extractor
	Cache     *report.Cache
	Generator app.Generator
	Recorder  app.Recorder
	// Storage holds the front page fallback; may be nil.
	Storage *sql.DB
	Conf    *app.Config
}

// Acquire returns the report bundle for storyID. An existing bundle is
// returned as is, with no network activity, unless force asks for a
// regeneration. On a miss the story is fetched, article text and comment
// tree are gathered concurrently, the generator is invoked once and the
// result is persisted before returning.
//
// Article and traversal failures degrade the bundle instead of failing it;
// only the root story fetch, generation and the cache write are fatal.
func (f *Flow) Acquire(ctx context.Context, storyID int, force bool) (*app.ReportBundle, error) {
	if !force && f.Cache.Exists(storyID) {
		return f.Cache.Load(storyID)
	}

	node, err := f.Client.Item(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("flow: fetch story %d: %w", storyID, err)
	}
	story, ok := node.(*app.Story)
	if !ok {
		return nil, fmt.Errorf("flow: item %d is not a story", storyID)
	}

	var (
		art      app.ArticleText
		comments []*app.Comment
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		art = f.Extractor.Extract(ctx, story.URL)
	}()
	go func() {
		defer wg.Done()
		var err error
		comments, err = f.Client.Comments(ctx, story.Kids, f.Conf.CommentLimit)
		if err != nil {
			log.Println(err) // degraded, keep what was gathered
		}
	}()
	wg.Wait()

	text, usage, err := f.Generator.Generate(ctx, story, art.Text, comments)
	if err != nil {
		return nil, fmt.Errorf("flow: generate report for %d: %w", storyID, err)
	}
	f.record(usage)

	b := &app.ReportBundle{
		StoryID:   story.ID,
		Title:     story.Title,
		URL:       story.URL,
		Report:    text,
		Article:   art,
		Comments:  comments,
		Provider:  f.Conf.Provider,
		Model:     usage.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.Cache.Save(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Chat answers a follow-up question about an already acquired story and
// appends both turns to the persisted transcript. A story without a bundle
// returns report.ErrNotFound; a report must exist before chat.
func (f *Flow) Chat(ctx context.Context, storyID int, question string) (string, error) {
	b, err := f.Cache.Load(storyID)
	if err != nil {
		return "", err
	}

	answer, usage, err := f.Generator.Chat(ctx, b, question)
	if err != nil {
		return "", fmt.Errorf("flow: chat for %d: %w", storyID, err)
	}
	f.record(usage)

	if err := f.Cache.AppendChatTurn(storyID, "user", question); err != nil {
		return "", err
	}
	if err := f.Cache.AppendChatTurn(storyID, "assistant", answer); err != nil {
		return "", err
	}
	return answer, nil
}

// TopStories returns one page of the front page. Fetched stories are kept
// in storage so the dashboard still has rows when the network is away;
// rows not seen for four retention windows are pruned.
func (f *Flow) TopStories(ctx context.Context, page int) ([]*app.Story, error) {
	size := f.Conf.PageSize
	offset := (page - 1) * size

	ids, err := f.Client.TopStoryIDs(ctx, page, size)
	if err != nil {
		log.Println(err)
		return f.storedStories(offset, size, err)
	}

	stories, err := f.Client.Stories(ctx, ids)
	if err != nil {
		log.Println(err)
		return f.storedStories(offset, size, err)
	}

	if f.Storage != nil && len(stories) > 0 {
		if err := dbp.InsertOrReplaceStories(f.Storage, stories, offset+1); err != nil {
			log.Println(err)
		}
		cutoff := time.Now().Add(-4 * app.EightHrs).Unix()
		if err := dbp.DeleteOlderStories(f.Storage, cutoff); err != nil {
			log.Println(err)
		}
	}
	return stories, nil
}

func (f *Flow) storedStories(offset, limit int, cause error) ([]*app.Story, error) {
	if f.Storage == nil {
		return nil, cause
	}
	stories, err := dbp.SelectStoriesByRank(f.Storage, offset, limit)
	if err != nil {
		return nil, cause
	}
	return stories, nil
}

func (f *Flow) record(u app.Usage) {
	if f.Recorder == nil {
		return
	}
	if err := f.Recorder.Record(u); err != nil {
		log.Println(err)
	}
}
