package search

import (
	"strings"

	"gorm.io/gorm"
)

// sqliteIndex is an FTS4 table whose docid is the post id.
type sqliteIndex struct{}

func (sqliteIndex) Migrate(db *gorm.DB) error {
	return db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS posts_fts USING fts4(title, body)`).Error
}

func (s sqliteIndex) Put(tx *gorm.DB, doc Document) error {
	if err := s.Remove(tx, doc.ID); err != nil {
		return err
	}
	return tx.Exec(`INSERT INTO posts_fts(docid, title, body) VALUES (?, ?, ?)`, doc.ID, doc.Title, doc.Body).Error
}

func (sqliteIndex) Remove(tx *gorm.DB, id uint) error {
	return tx.Exec(`DELETE FROM posts_fts WHERE docid = ?`, id).Error
}

// Match ANDs the terms; each one is quoted so user input never reaches the FTS query syntax.
func (sqliteIndex) Match(tx *gorm.DB, terms []string) ([]uint, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return []uint{}, nil
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + term + `"`
	}
	return scanIDs(tx, `SELECT docid FROM posts_fts WHERE posts_fts MATCH ?`, strings.Join(quoted, " "))
}
