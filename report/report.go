// Package report persists generated reports with their chat context.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mseshachalam/vector/app"
)

// ErrNotFound reports a story with no cached bundle.
var ErrNotFound = errors.New("report: no bundle for story")

// Cache stores one bundle file per story id under Dir. A bundle is reused as
// long as its file exists; there is no freshness check against the live
// story. Writes for one story are serialized and published atomically, so a
// partially written bundle is never observable.
type Cache struct {
	Dir string

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewCache makes sure dir exists and returns a cache over it.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create %s: %w", dir, err)
	}
	return &Cache{Dir: dir, locks: make(map[int]*sync.Mutex)}, nil
}

func (c *Cache) path(id int) string {
	return filepath.Join(c.Dir, fmt.Sprintf("hn_%d.json", id))
}

func (c *Cache) markdownPath(id int) string {
	return filepath.Join(c.Dir, fmt.Sprintf("hn_%d.md", id))
}

func (c *Cache) lock(id int) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = new(sync.Mutex)
		c.locks[id] = m
	}
	return m
}

// Exists reports whether a bundle for id is on disk.
func (c *Cache) Exists(id int) bool {
	_, err := os.Stat(c.path(id))
	return err == nil
}

// Load reads the bundle for id. A missing bundle returns ErrNotFound.
func (c *Cache) Load(id int) (*app.ReportBundle, error) {
	buf, err := os.ReadFile(c.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report: read bundle %d: %w", id, err)
	}
	b := new(app.ReportBundle)
	if err := json.Unmarshal(buf, b); err != nil {
		return nil, fmt.Errorf("report: decode bundle %d: %w", id, err)
	}
	return b, nil
}

// Save publishes b, replacing any previous bundle for the story.
func (c *Cache) Save(b *app.ReportBundle) error {
	l := c.lock(b.StoryID)
	l.Lock()
	defer l.Unlock()
	return c.write(b)
}

// AppendChatTurn adds one turn to the story's transcript. The bundle must
// already exist; every other field is carried over untouched.
func (c *Cache) AppendChatTurn(id int, role, message string) error {
	l := c.lock(id)
	l.Lock()
	defer l.Unlock()

	b, err := c.Load(id)
	if err != nil {
		return err
	}
	b.Chat = append(b.Chat, app.ChatTurn{Role: role, Message: message})
	return c.write(b)
}

// Invalidate drops the story's bundle so the next acquire regenerates it.
func (c *Cache) Invalidate(id int) error {
	l := c.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(c.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("report: invalidate bundle %d: %w", id, err)
	}
	if err := os.Remove(c.markdownPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Println(err)
	}
	return nil
}

// write encodes b to a temp file in the cache dir and renames it into place.
// The temp name starts with a dot so it can never match a bundle path.
func (c *Cache) write(b *app.ReportBundle) error {
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode bundle %d: %w", b.StoryID, err)
	}

	f, err := os.CreateTemp(c.Dir, fmt.Sprintf(".hn_%d_*", b.StoryID))
	if err != nil {
		return fmt.Errorf("report: write bundle %d: %w", b.StoryID, err)
	}
	tmp := f.Name()
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("report: write bundle %d: %w", b.StoryID, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("report: sync bundle %d: %w", b.StoryID, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("report: close bundle %d: %w", b.StoryID, err)
	}
	if err := os.Rename(tmp, c.path(b.StoryID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("report: publish bundle %d: %w", b.StoryID, err)
	}

	// Companion markdown is derived output for humans, never read back.
	if err := os.WriteFile(c.markdownPath(b.StoryID), []byte(markdown(b)), 0o644); err != nil {
		log.Println(err)
	}
	return nil
}

func markdown(b *app.ReportBundle) string {
	var sb strings.Builder
	sb.WriteString(b.Report)
	if len(b.Chat) > 0 {
		sb.WriteString("\n\n## Chat Log\n")
		for _, turn := range b.Chat {
			role := "Assistant"
			if turn.Role == "user" {
				role = "User"
			}
			fmt.Fprintf(&sb, "\n**%s**: %s\n", role, turn.Message)
		}
	}
	return sb.String()
}
