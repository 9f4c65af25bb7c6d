// Package sqlite implements the secondary persistence ports using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/example/hearth/internal/core/routine"
	"github.com/example/hearth/internal/ports/secondary"
)

// MemoryStore implements secondary.MemoryStore using SQLite. The metadata
// bag is stored as a JSON text column, so everything a routine serializes
// into it survives a round trip unchanged.
type MemoryStore struct {
	db *sql.DB
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(db *sql.DB) *MemoryStore {
	return &MemoryStore{db: db}
}

// AddMemory persists a new record and returns its store-assigned ID.
func (s *MemoryStore) AddMemory(ctx context.Context, content, author, kind, persona string, importance float64, metadata map[string]any) (string, error) {
	id := ulid.Make().String()
	now := time.Now().UTC().Format(time.RFC3339)

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `INSERT INTO memories (id, content, author, kind, persona, importance, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var authorVal, personaVal interface{}
	if author != "" {
		authorVal = author
	}
	if persona != "" {
		personaVal = persona
	}

	_, err = s.db.ExecContext(ctx, query, id, content, authorVal, kind, personaVal, importance, string(encoded), now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetMemoryByID retrieves a record by ID, or (nil, nil) when absent.
func (s *MemoryStore) GetMemoryByID(ctx context.Context, id string) (*secondary.MemoryRecord, error) {
	query := `SELECT id, content, author, kind, persona, importance, metadata, created_at, updated_at
		FROM memories WHERE id = ?`

	record, err := s.scanOne(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateMemory overwrites the mutable fields of an existing record.
func (s *MemoryStore) UpdateMemory(ctx context.Context, id string, record *secondary.MemoryRecord) error {
	encoded, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	query := `UPDATE memories SET content = ?, importance = ?, metadata = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, record.Content, record.Importance, string(encoded), now, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("memory not found: %s", id)
	}
	return nil
}

// DeleteMemory removes a record, reporting whether it existed.
func (s *MemoryStore) DeleteMemory(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListRoutines retrieves routine-kind records, newest first. The enabled
// flag lives inside the metadata bag, so the filter is applied after
// decoding rather than in SQL.
func (s *MemoryStore) ListRoutines(ctx context.Context, enabledOnly bool) ([]*secondary.MemoryRecord, error) {
	query := `SELECT id, content, author, kind, persona, importance, metadata, created_at, updated_at
		FROM memories WHERE kind = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, routine.MemoryKind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*secondary.MemoryRecord
	for rows.Next() {
		record, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		if enabledOnly && !routine.EnabledInMetadata(record.Metadata) {
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *MemoryStore) scanOne(row scanner) (*secondary.MemoryRecord, error) {
	var record secondary.MemoryRecord
	var author, persona, metadata sql.NullString

	err := row.Scan(
		&record.ID,
		&record.Content,
		&author,
		&record.Kind,
		&persona,
		&record.Importance,
		&metadata,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Author = author.String
	record.Persona = persona.String
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", record.ID, err)
		}
	}
	return &record, nil
}

// Ensure MemoryStore implements the interface.
var _ secondary.MemoryStore = (*MemoryStore)(nil)
