// Package hn provides functions to fetch data from hacker news.
package hn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"jaytaylor.com/html2text"

	"github.com/mseshachalam/vector/app"
)

const (
	// DefaultBaseURL is the public HN API root.
	DefaultBaseURL = "https://hacker-news.firebaseio.com/v0"
	// PostLinkURL is the HN URL for given id
	PostLinkURL = "https://news.ycombinator.com/item?id=%d"
)

// ErrNotFound reports an id the API has no item for. Deleted items answer
// with a null body, so callers treat this as expected.
var ErrNotFound = errors.New("hn: item not found")

// MalformedRecordError reports a payload that is neither story nor comment.
type MalformedRecordError struct {
	ID int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("hn: item %d is neither story nor comment", e.ID)
}

// Client fetches items from the HN API.
type Client struct {
	// BaseURL points at the API root, override for tests.
	BaseURL string
	// HTTPClient is the transport used for every call.
	HTTPClient *http.Client
	// Workers is the pool size for bulk story fetches.
	Workers int
	// Batch is how many comment fetches are in flight at once.
	Batch int
}

// NewClient returns a client against the public HN API.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: hc,
		Workers:    app.DefaultFetchWorkers,
		Batch:      app.DefaultFetchBatch,
	}
}

// rawItem is the wire shape of an HN item. Parent is a pointer so a comment
// can be told apart from a story by the field's presence.
type rawItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
	Parent      *int   `json:"parent"`
	Kids        []int  `json:"kids"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Title       string `json:"title"`
	Descendants int    `json:"descendants"`
}

// TopStoryIDs returns one page of the current top story ids. Pages are
// 1-indexed; a page past the end yields an empty slice.
func (c *Client) TopStoryIDs(ctx context.Context, page, pageSize int) ([]int, error) {
	if page < 1 || pageSize <= 0 {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/topstories.json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hn: fetch top story ids: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn: fetch top story ids: status %d", resp.StatusCode)
	}

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("hn: decode top story ids: %w", err)
	}

	start := (page - 1) * pageSize
	if start >= len(ids) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end], nil
}

// Item fetches the item with the given id. The payload is classified by the
// presence of the parent field: present means *app.Comment, absent with a
// story shape means *app.Story. Missing items return ErrNotFound.
func (c *Client) Item(ctx context.Context, id int) (app.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/item/%d.json", c.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hn: fetch item %d: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn: fetch item %d: status %d", id, resp.StatusCode)
	}

	var it *rawItem
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("hn: decode item %d: %w", id, err)
	}
	if it == nil {
		return nil, ErrNotFound
	}

	if it.Parent != nil || it.Type == "comment" {
		var parent int
		if it.Parent != nil {
			parent = *it.Parent
		}
		return &app.Comment{
			ID:     it.ID,
			Parent: parent,
			By:     it.By,
			Text:   CleanText(it.Text),
			Kids:   it.Kids,
			Dead:   it.Dead || it.Deleted,
		}, nil
	}
	if it.Type == "story" || it.Type == "job" || it.Title != "" {
		return &app.Story{
			ID:          it.ID,
			By:          it.By,
			Title:       it.Title,
			URL:         it.URL,
			Score:       it.Score,
			Time:        it.Time,
			Descendants: it.Descendants,
			Kids:        it.Kids,
		}, nil
	}
	return nil, &MalformedRecordError{ID: id}
}

// Stories fetches the stories with the given ids concurrently, preserving id
// order. Missing ids and non-stories are skipped.
func (c *Client) Stories(ctx context.Context, ids []int) ([]*app.Story, error) {
	type job struct {
		slot, id int
	}

	out := make([]*app.Story, len(ids))
	jobs := make(chan job)
	go func() {
		defer close(jobs)
		for i, id := range ids {
			jobs <- job{slot: i, id: id}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < c.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					return
				}
				node, err := c.Item(ctx, j.id)
				if err != nil {
					if !errors.Is(err, ErrNotFound) {
						log.Println(err) // warning
					}
					continue
				}
				if s, ok := node.(*app.Story); ok {
					out[j.slot] = s
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stories []*app.Story
	for _, s := range out {
		if s != nil {
			stories = append(stories, s)
		}
	}
	return stories, nil
}

// CleanText reduces HN comment HTML to single-spaced plain text.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil {
		text = s
	}
	return strings.Join(strings.Fields(text), " ")
}
