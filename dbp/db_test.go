package dbp

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mseshachalam/vector/app"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := SetupTables(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestInsertAndSelectByRank(t *testing.T) {
	db := openTestDB(t)

	stories := []*app.Story{
		{ID: 10, Title: "First", URL: "https://www.example.com/a", Score: 99, By: "pg"},
		{ID: 20, Title: "Second", URL: "https://blog.example.org/b", Score: 50, By: "dang"},
	}
	if err := InsertOrReplaceStories(db, stories, 1); err != nil {
		t.Fatal(err)
	}

	got, err := SelectStoriesByRank(db, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stories, want 2", len(got))
	}
	if got[0].ID != 10 || got[1].ID != 20 {
		t.Fatalf("rank order broken: %d, %d", got[0].ID, got[1].ID)
	}

	// A later page replaces ranks; the page offset must hold.
	if err := InsertOrReplaceStories(db, []*app.Story{{ID: 30, Title: "Third"}}, 3); err != nil {
		t.Fatal(err)
	}
	got, err = SelectStoriesByRank(db, 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 30 {
		t.Fatalf("offset select got %+v", got)
	}
}

func TestInsertOrReplaceIsUpsert(t *testing.T) {
	db := openTestDB(t)

	if err := InsertOrReplaceStories(db, []*app.Story{{ID: 10, Title: "Old", Score: 1}}, 1); err != nil {
		t.Fatal(err)
	}
	if err := InsertOrReplaceStories(db, []*app.Story{{ID: 10, Title: "New", Score: 2}}, 1); err != nil {
		t.Fatal(err)
	}

	got, err := SelectStoriesByRank(db, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d stories, want 1", len(got))
	}
	if got[0].Title != "New" || got[0].Score != 2 {
		t.Fatalf("replace did not take: %+v", got[0])
	}
}

func TestDeleteOlderStories(t *testing.T) {
	db := openTestDB(t)

	if err := InsertOrReplaceStories(db, []*app.Story{{ID: 10, Title: "Fresh"}}, 1); err != nil {
		t.Fatal(err)
	}

	// Everything was added just now; an old cutoff removes nothing.
	if err := DeleteOlderStories(db, time.Now().Add(-time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}
	got, err := SelectStoriesByRank(db, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal("fresh story was pruned")
	}

	if err := DeleteOlderStories(db, time.Now().Add(time.Hour).Unix()); err != nil {
		t.Fatal(err)
	}
	got, err = SelectStoriesByRank(db, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatal("stale story survived pruning")
	}
}
