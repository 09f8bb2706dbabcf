// Package store persists processed document records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openfoia/foiagraph/internal/core/model"
)

var ErrNotFound = errors.New("document not found")

// SQLiteStore keeps one row per document and one row per merged mention.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath. ":memory:"
// gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	var dsn string
	if dbPath == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		context TEXT,
		summary TEXT NOT NULL,
		extraction TEXT NOT NULL,
		redaction TEXT NOT NULL,
		processed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mentions (
		doc_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		entity_type TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		normalized_text TEXT NOT NULL,
		confidence REAL NOT NULL,
		canonical_id TEXT,
		data TEXT NOT NULL,
		PRIMARY KEY (doc_id, seq),
		FOREIGN KEY (doc_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_mentions_canonical_id ON mentions(canonical_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveDocument inserts or replaces a document record and its mentions.
func (s *SQLiteStore) SaveDocument(ctx context.Context, rec model.DocumentRecord) error {
	extraction, err := json.Marshal(rec.Extraction)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction metadata: %w", err)
	}
	redaction, err := json.Marshal(rec.Redaction)
	if err != nil {
		return fmt.Errorf("failed to marshal redaction summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, context, summary, extraction, redaction, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			context = excluded.context,
			summary = excluded.summary,
			extraction = excluded.extraction,
			redaction = excluded.redaction,
			processed_at = excluded.processed_at
	`, rec.ID, rec.Context, rec.Summary, string(extraction), string(redaction),
		rec.ProcessedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", rec.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM mentions WHERE doc_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to clear mentions of %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mentions (doc_id, seq, entity_type, raw_text, normalized_text, confidence, canonical_id, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mention insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range rec.Mentions {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal mention: %w", err)
		}
		var canonical sql.NullString
		if id := m.MetaString(model.MetaCanonicalID); id != "" {
			canonical = sql.NullString{String: id, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, i, string(m.EntityType), m.RawText, m.NormalizedText,
			m.Confidence, canonical, string(data)); err != nil {
			return fmt.Errorf("failed to save mention %d of %s: %w", i, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", rec.ID, err)
	}
	return nil
}

// GetDocument loads a record with its mentions, or ErrNotFound.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.DocumentRecord, error) {
	var (
		rec                   model.DocumentRecord
		docContext            sql.NullString
		extraction, redaction string
		processedAt           string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, context, summary, extraction, redaction, processed_at
		FROM documents WHERE id = ?
	`, id).Scan(&rec.ID, &docContext, &rec.Summary, &extraction, &redaction, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}

	rec.Context = docContext.String
	if err := json.Unmarshal([]byte(extraction), &rec.Extraction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extraction metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(redaction), &rec.Redaction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redaction summary: %w", err)
	}
	if rec.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
		return nil, fmt.Errorf("failed to parse processed_at: %w", err)
	}

	if rec.Mentions, err = s.ListMentions(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListMentions returns the stored mentions of a document in saved order.
func (s *SQLiteStore) ListMentions(ctx context.Context, docID string) ([]*model.ExtractedEntity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM mentions WHERE doc_id = ? ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentions of %s: %w", docID, err)
	}
	defer rows.Close()

	mentions := []*model.ExtractedEntity{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		var m model.ExtractedEntity
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mention: %w", err)
		}
		mentions = append(mentions, &m)
	}
	return mentions, rows.Err()
}

// DocumentsMentioning lists ids of documents with a mention linked to the
// given canonical entity.
func (s *SQLiteStore) DocumentsMentioning(ctx context.Context, canonicalID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT doc_id FROM mentions WHERE canonical_id = ? ORDER BY doc_id
	`, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions of %s: %w", canonicalID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
