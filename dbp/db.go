// Package dbp provides access to storage and querying.
package dbp

import (
	"database/sql"
	"time"

	"github.com/mseshachalam/vector/app"
	"github.com/mseshachalam/vector/util"
)

// CreateTablesStmts contains needed sql stmts to setup required tables
var CreateTablesStmts = []string{
	"CREATE TABLE IF NOT EXISTS `stories` (`id` INTEGER PRIMARY KEY, `title` TEXT, `link` TEXT, `score` INTEGER, `by` TEXT, `time` INTEGER, `descendants` INTEGER, `domain` TEXT, `rank` INTEGER, `added` INTEGER NOT NULL)",
}

// SetupTables creates the stories table
func SetupTables(db *sql.DB) error {
	for _, stmt := range CreateTablesStmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertOrReplaceStories upserts stories with their current front page rank,
// startRank being the rank of the first one. Added is set to now so
// retention pruning keeps what is still on the front page.
func InsertOrReplaceStories(db *sql.DB, stories []*app.Story, startRank int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO stories (`id`, `title`, `link`, `score`, `by`, `time`, `descendants`, `domain`, `rank`, `added`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, s := range stories {
		domain := ""
		if s.URL != "" {
			if d, err := util.URLToDomain(s.URL); err == nil {
				domain = d
			}
		}
		if _, err := stmt.Exec(s.ID, s.Title, s.URL, s.Score, s.By, s.Time, s.Descendants, domain, startRank+i, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SelectStoriesByRank returns stored stories ordered by front page rank,
// the offline stand-in for a top stories page.
func SelectStoriesByRank(db *sql.DB, offset, limit int) ([]*app.Story, error) {
	rows, err := db.Query("SELECT `id`, `title`, `link`, `score`, `by`, `time`, `descendants` FROM stories ORDER BY `rank` ASC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*app.Story
	for rows.Next() {
		s := new(app.Story)
		if err := rows.Scan(&s.ID, &s.Title, &s.URL, &s.Score, &s.By, &s.Time, &s.Descendants); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

// DeleteOlderStories deletes stories that were last seen before t
func DeleteOlderStories(db *sql.DB, t int64) error {
	_, err := db.Exec("DELETE FROM stories WHERE added < ?", t)
	return err
}
