// Package store keeps ADL documents in a SQLite database together with an
// index of the use cases they define, so references can be resolved
// without touching the file system.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/adl/internal/models"
	"github.com/harrison/adl/internal/parser"
)

// ErrNotFound is returned when a named document does not exist
var ErrNotFound = errors.New("document not found")

// Document is a stored ADL document
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Version    string    `json:"version,omitempty"`
	Tags       []string  `json:"tags"`
	UseCaseIDs []string  `json:"useCaseIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasTag reports whether the document carries tag
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Revision is a previous version of a document's content
type Revision struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store manages the SQLite document database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + dbPath + "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path the store was opened with
func (s *Store) Path() string {
	return s.dbPath
}

// Save parses content and stores it under name, replacing any document of
// the same name. The replaced content is kept as a revision. Documents that
// fail to parse are rejected.
func (s *Store) Save(ctx context.Context, name, content string, tags []string) (*Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("document name is required")
	}

	parsed, err := parser.ParseDocument(content)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", name, err)
	}

	tagsJSON, err := json.Marshal(normalizeTags(tags))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	var version string
	if len(parsed.UseCases) > 0 {
		version = parsed.UseCases[0].Version
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var id, previous string
	err = tx.QueryRowContext(ctx, `SELECT id, content FROM documents WHERE name = ?`, name).Scan(&id, &previous)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (id, name, content, version, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, name, content, version, string(tagsJSON), now, now)
		if err != nil {
			return nil, fmt.Errorf("insert document: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("query document: %w", err)
	default:
		if previous != content {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO revisions (id, document_id, content, created_at) VALUES (?, ?, ?, ?)`,
				uuid.NewString(), id, previous, now)
			if err != nil {
				return nil, fmt.Errorf("insert revision: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET content = ?, version = ?, tags = ?, updated_at = ? WHERE id = ?`,
			content, version, string(tagsJSON), now, id)
		if err != nil {
			return nil, fmt.Errorf("update document: %w", err)
		}
	}

	if err := replaceUseCases(ctx, tx, id, parsed.UseCases); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}
	return s.Get(ctx, name)
}

func replaceUseCases(ctx context.Context, tx *sql.Tx, documentID string, useCases []models.UseCase) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM use_cases WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear use case index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO use_cases (document_id, position, use_case_id, sub_use_case, data) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare use case insert: %w", err)
	}
	defer stmt.Close()

	for i, uc := range useCases {
		data, err := json.Marshal(uc)
		if err != nil {
			return fmt.Errorf("marshal use case %s: %w", uc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, documentID, i, uc.ID, uc.SubUseCase, string(data)); err != nil {
			return fmt.Errorf("index use case %s: %w", uc.ID, err)
		}
	}
	return nil
}

// Get returns the named document
func (s *Store) Get(ctx context.Context, name string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, COALESCE(version, ''), tags, created_at, updated_at FROM documents WHERE name = ?`, name)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	ids, err := s.useCaseIDs(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.UseCaseIDs = ids
	return doc, nil
}

// List returns all documents ordered by name. A non-empty tag restricts the
// result to documents carrying it. Content is included.
func (s *Store) List(ctx context.Context, tag string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, COALESCE(version, ''), tags, created_at, updated_at FROM documents ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if tag != "" && !doc.HasTag(tag) {
			continue
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	rows.Close()

	for i := range docs {
		ids, err := s.useCaseIDs(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].UseCaseIDs = ids
	}
	return docs, nil
}

// Delete removes the named document, its revisions and its index entries
func (s *Store) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("query document: %w", err)
	}

	for _, q := range []string{
		`DELETE FROM use_cases WHERE document_id = ?`,
		`DELETE FROM revisions WHERE document_id = ?`,
		`DELETE FROM documents WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete document %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Revisions returns the previous contents of a document, newest first
func (s *Store) Revisions(ctx context.Context, name string) ([]Revision, error) {
	doc, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, created_at FROM revisions WHERE document_id = ? ORDER BY created_at DESC, rowid DESC`, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revisions, nil
}

// UseCases returns the use cases of the named document in document order
func (s *Store) UseCases(ctx context.Context, name string) ([]models.UseCase, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT u.data FROM use_cases u
JOIN documents d ON d.id = u.document_id
WHERE d.name = ?
ORDER BY u.position ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("query use cases: %w", err)
	}
	useCases, err := scanUseCases(rows)
	if err != nil {
		return nil, err
	}
	if len(useCases) == 0 {
		if _, err := s.Get(ctx, name); err != nil {
			return nil, err
		}
	}
	return useCases, nil
}

// FindUseCases returns the use cases with the given ids across all
// documents, ordered by document name then position. Only the first use
// case found for each id is returned.
func (s *Store) FindUseCases(ctx context.Context, ids []string) ([]models.UseCase, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT u.data FROM use_cases u
JOIN documents d ON d.id = u.document_id
WHERE u.use_case_id IN (`+placeholders+`)
ORDER BY d.name ASC, u.position ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query use cases: %w", err)
	}
	found, err := scanUseCases(rows)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []models.UseCase
	for _, uc := range found {
		if seen[uc.ID] {
			continue
		}
		seen[uc.ID] = true
		result = append(result, uc)
	}
	return result, nil
}

func (s *Store) useCaseIDs(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT use_case_id FROM use_cases WHERE document_id = ? ORDER BY position ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query use case ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan use case id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate use case ids: %w", err)
	}
	return ids, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var tags string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Content, &doc.Version, &tags, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags of %s: %w", doc.Name, err)
	}
	return &doc, nil
}

func scanUseCases(rows *sql.Rows) ([]models.UseCase, error) {
	defer rows.Close()

	var useCases []models.UseCase
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan use case: %w", err)
		}
		var uc models.UseCase
		if err := json.Unmarshal([]byte(data), &uc); err != nil {
			return nil, fmt.Errorf("unmarshal use case: %w", err)
		}
		useCases = append(useCases, uc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate use cases: %w", err)
	}
	return useCases, nil
}

// normalizeTags trims, deduplicates and sorts tags
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}
