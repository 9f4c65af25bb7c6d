package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/hearth/internal/ports/secondary"
)

// ExecutionLog implements secondary.ExecutionLog using SQLite.
type ExecutionLog struct {
	db *sql.DB
}

// NewExecutionLog creates a new ExecutionLog.
func NewExecutionLog(db *sql.DB) *ExecutionLog {
	return &ExecutionLog{db: db}
}

// Append persists one execution outcome.
func (l *ExecutionLog) Append(ctx context.Context, entry *secondary.ExecutionEntry) error {
	query := `INSERT INTO execution_log (execution_id, routine_id, status, error, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var errVal interface{}
	if entry.Error != "" {
		errVal = entry.Error
	}

	_, err := l.db.ExecContext(ctx, query,
		entry.ExecutionID,
		entry.RoutineID,
		entry.Status,
		errVal,
		entry.StartedAt,
		entry.EndedAt,
	)
	return err
}

// ListByRoutine returns entries for a routine, newest first.
func (l *ExecutionLog) ListByRoutine(ctx context.Context, routineID string, limit int) ([]*secondary.ExecutionEntry, error) {
	query := `SELECT execution_id, routine_id, status, error, started_at, ended_at
		FROM execution_log WHERE routine_id = ? ORDER BY started_at DESC`
	args := []any{routineID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*secondary.ExecutionEntry
	for rows.Next() {
		var entry secondary.ExecutionEntry
		var errVal sql.NullString
		if err := rows.Scan(
			&entry.ExecutionID,
			&entry.RoutineID,
			&entry.Status,
			&errVal,
			&entry.StartedAt,
			&entry.EndedAt,
		); err != nil {
			return nil, err
		}
		entry.Error = errVal.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Ensure ExecutionLog implements the interface.
var _ secondary.ExecutionLog = (*ExecutionLog)(nil)
