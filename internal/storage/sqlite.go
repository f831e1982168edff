package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pubtrack/pubtrack/internal/publication"
)

// Partition names stored with each indexed record.
const (
	PartitionArticles  = "articles"
	PartitionPreprints = "preprints"
)

// DB wraps the ephemeral query index. It is always rebuilt from the output
// document and never edited in place.
type DB struct {
	db *sql.DB
}

// IndexedRecord is a publication plus the partition it was listed under.
type IndexedRecord struct {
	publication.Record
	Partition string `json:"partition"`
}

// selectPubFields contains the standard field list for SELECT queries.
const selectPubFields = `rank, partition, title, journal, details, date, year,
	authors, doi, url, type`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS publications (
			rank INTEGER PRIMARY KEY,
			partition TEXT NOT NULL,
			title TEXT NOT NULL,
			journal TEXT NOT NULL,
			details TEXT,
			date TEXT NOT NULL,
			year INTEGER NOT NULL,
			authors TEXT NOT NULL,
			doi TEXT,
			url TEXT,
			type TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_doi ON publications(lower(doi)) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year);

		-- Standalone full-text table; rank is reserved by FTS5
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			pub_rank UNINDEXED,
			title,
			authors,
			journal
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromFile clears the index and rebuilds it from an output document.
func (d *DB) RebuildFromFile(path string) (int, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return 0, err
	}
	return d.RebuildFromDocument(*doc)
}

// RebuildFromDocument replaces the index contents with doc.
func (d *DB) RebuildFromDocument(doc publication.Document) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM publications"); err != nil {
		return 0, fmt.Errorf("clearing publications table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM publications_fts"); err != nil {
		return 0, fmt.Errorf("clearing publications_fts table: %w", err)
	}

	pubStmt, err := tx.Prepare(`
		INSERT INTO publications (` + selectPubFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing publications insert: %w", err)
	}
	defer pubStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO publications_fts (pub_rank, title, authors, journal)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	count := 0
	insert := func(partition string, records []publication.Record) error {
		for _, r := range records {
			year, _ := strconv.Atoi(r.Year)

			_, err := pubStmt.Exec(
				r.Rank, partition, r.Title, r.Journal, nullableStringValue(r.Details),
				r.Date, year, r.Authors,
				nullableStringValue(r.DOI), nullableStringValue(r.URL), r.Type,
			)
			if err != nil {
				return fmt.Errorf("inserting publication %s (rank %d): %w", r.DOI, r.Rank, err)
			}
			if _, err := ftsStmt.Exec(r.Rank, r.Title, r.Authors, r.Journal); err != nil {
				return fmt.Errorf("inserting fts for %s: %w", r.DOI, err)
			}
			count++
		}
		return nil
	}
	if err := insert(PartitionArticles, doc.Articles); err != nil {
		return 0, err
	}
	if err := insert(PartitionPreprints, doc.Preprints); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return count, nil
}

// ListFilter narrows List. Zero values mean no constraint.
type ListFilter struct {
	Partition string // articles or preprints
	Type      string // exact record type
	Year      int
	YearFrom  int
	YearTo    int
	Journal   string // case-insensitive substring
	Author    string // FTS prefix match on the author string
	Limit     int
}

// List returns indexed records matching f ordered by rank, highest first.
func (d *DB) List(f ListFilter) ([]IndexedRecord, error) {
	var args []interface{}
	query := `SELECT ` + selectPubFields + ` FROM publications WHERE 1=1`

	if f.Author != "" {
		query += ` AND rank IN (SELECT CAST(pub_rank AS INTEGER) FROM publications_fts WHERE publications_fts MATCH ?)`
		args = append(args, "authors:"+prepareAuthorQuery(f.Author))
	}
	if f.Partition != "" {
		query += " AND partition = ?"
		args = append(args, f.Partition)
	}
	if f.Type != "" {
		query += " AND type = ?"
		args = append(args, f.Type)
	}
	if f.Year > 0 {
		query += " AND year = ?"
		args = append(args, f.Year)
	}
	if f.YearFrom > 0 {
		query += " AND year >= ?"
		args = append(args, f.YearFrom)
	}
	if f.YearTo > 0 {
		query += " AND year <= ?"
		args = append(args, f.YearTo)
	}
	if f.Journal != "" {
		query += " AND journal LIKE ?"
		args = append(args, "%"+f.Journal+"%")
	}

	query += " ORDER BY rank DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search performs a full-text search over title, authors and journal.
func (d *DB) Search(query string, limit int) ([]IndexedRecord, error) {
	return d.search(prepareFTSQuery(query), limit)
}

// SearchField searches a single column: title, author or journal.
func (d *DB) SearchField(field, value string, limit int) ([]IndexedRecord, error) {
	var ftsQuery string
	switch field {
	case "author":
		ftsQuery = "authors:" + prepareAuthorQuery(value)
	case "title":
		ftsQuery = "title:" + prepareFTSQuery(value)
	case "journal":
		ftsQuery = "journal:" + prepareFTSQuery(value)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}
	return d.search(ftsQuery, limit)
}

func (d *DB) search(ftsQuery string, limit int) ([]IndexedRecord, error) {
	if strings.TrimSpace(ftsQuery) == "" {
		return []IndexedRecord{}, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := d.db.Query(`
		SELECT `+selectPubFields+`
		FROM publications
		WHERE rank IN (SELECT CAST(pub_rank AS INTEGER) FROM publications_fts WHERE publications_fts MATCH ?)
		ORDER BY rank DESC
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByDOI returns the record with the given DOI, or nil when absent.
func (d *DB) GetByDOI(doi string) (*IndexedRecord, error) {
	row := d.db.QueryRow(`SELECT `+selectPubFields+` FROM publications WHERE lower(doi) = lower(?)`, doi)
	return scanRecord(row)
}

// Count returns the number of indexed records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*IndexedRecord, error) {
	var r IndexedRecord
	var year int
	var details, doi, url sql.NullString

	err := s.Scan(
		&r.Rank, &r.Partition, &r.Title, &r.Journal, &details, &r.Date, &year,
		&r.Authors, &doi, &url, &r.Type,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	r.Details = details.String
	r.DOI = doi.String
	r.URL = url.String
	r.Year = strconv.Itoa(year)
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]IndexedRecord, error) {
	records := []IndexedRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) to enable fuzzy matching (e.g., "Mark" matches "Markov").
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	parts := strings.Fields(author)
	var terms []string
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Multi-word queries require every part
	return "(" + strings.Join(terms, " AND ") + ")"
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
