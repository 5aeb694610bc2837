package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNoPublication indicates the Publication table holds no record,
// which makes key derivation impossible.
var ErrNoPublication = errors.New("metastore: no publication record")

// Publication is the identity row used for key derivation.
type Publication struct {
	MepsLanguageIndex int
	Symbol            string
	Year              int
	IssueTagNumber    string
}

// DocumentRow is one encrypted document record.
type DocumentRow struct {
	MepsDocumentID int64
	Title          string
	Content        []byte
}

// Store provides read-only access to the publication metadata database
// extracted from the inner container.
type Store struct {
	db *sql.DB
}

// Open connects to the database file read-only. The file must be on
// disk; SQLite needs file-backed random access.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Publication returns the single publication identity record.
func (s *Store) Publication(ctx context.Context) (Publication, error) {
	var p Publication
	err := s.db.QueryRowContext(
		ctx,
		`SELECT MepsLanguageIndex, Symbol, Year, IssueTagNumber FROM Publication LIMIT 1`,
	).Scan(&p.MepsLanguageIndex, &p.Symbol, &p.Year, &p.IssueTagNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return Publication{}, ErrNoPublication
	}
	if err != nil {
		return Publication{}, fmt.Errorf("query publication: %w", err)
	}
	return p, nil
}

// IdentityString returns the canonical key-derivation input,
// "{language}_{symbol}_{year}_{issue}".
func (p Publication) IdentityString() string {
	return fmt.Sprintf("%d_%s_%d_%s", p.MepsLanguageIndex, p.Symbol, p.Year, p.IssueTagNumber)
}

// DocumentsByClass returns all document records of the given content
// class in query order.
func (s *Store) DocumentsByClass(ctx context.Context, class int) ([]DocumentRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT MepsDocumentId, Title, Content FROM Document WHERE Class = ?`,
		class,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.MepsDocumentID, &d.Title, &d.Content); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
