// Package search keeps the full-text index over post titles and searchable content.
package search

import (
	"strings"

	"gorm.io/gorm"
)

// Document is what gets indexed for one post.
type Document struct {
	ID    uint
	Title string
	Body  string
}

// Index is written inside the same transaction as the posts table, so every
// method takes the *gorm.DB handle (usually a tx) it has to run on.
type Index interface {
	Migrate(db *gorm.DB) error
	Put(tx *gorm.DB, doc Document) error
	Remove(tx *gorm.DB, id uint) error
	Match(tx *gorm.DB, terms []string) ([]uint, error)
}

// ForDialect picks the implementation for the connected database.
func ForDialect(name string) Index {
	if name == "postgres" {
		return postgresIndex{}
	}
	return sqliteIndex{}
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(strings.ReplaceAll(term, `"`, ""))
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

func scanIDs(tx *gorm.DB, query string, args ...interface{}) ([]uint, error) {
	rows, err := tx.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uint{}
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
