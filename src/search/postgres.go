package search

import (
	"strings"

	"gorm.io/gorm"
)

const pgDocument = `to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(searchable_content, ''))`

// postgresIndex searches the posts table itself through a GIN expression index,
// so writes have nothing extra to do.
type postgresIndex struct{}

func (postgresIndex) Migrate(db *gorm.DB) error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_posts_fulltext ON posts USING GIN (` + pgDocument + `)`).Error
}

func (postgresIndex) Put(tx *gorm.DB, doc Document) error { return nil }

func (postgresIndex) Remove(tx *gorm.DB, id uint) error { return nil }

// Match ANDs one phrase query per term, the same meaning a quoted FTS4 term has.
func (postgresIndex) Match(tx *gorm.DB, terms []string) ([]uint, error) {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return []uint{}, nil
	}
	query, args := pgMatchQuery(terms)
	return scanIDs(tx, query, args...)
}

func pgMatchQuery(terms []string) (string, []interface{}) {
	parts := make([]string, len(terms))
	args := make([]interface{}, len(terms))
	for i, term := range terms {
		parts[i] = `phraseto_tsquery('simple', ?)`
		args[i] = term
	}
	return `SELECT id FROM posts WHERE ` + pgDocument + ` @@ (` + strings.Join(parts, " && ") + `)`, args
}
