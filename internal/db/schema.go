package db

// SchemaSQL is the complete schema for fresh hearth installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests
// use this schema via GetSchemaSQL(); repository code referencing a
// column that does not exist here fails immediately with "no such
// column" instead of drifting silently.
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Memories (generic record store; routines ride in the metadata bag)
CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	author TEXT,
	kind TEXT NOT NULL,
	persona TEXT,
	importance REAL NOT NULL DEFAULT 0.5,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_memories_kind ON memories(kind);
CREATE INDEX IF NOT EXISTS idx_memories_author ON memories(author);

-- Execution log (one row per routine execution outcome)
CREATE TABLE IF NOT EXISTS execution_log (
	execution_id TEXT PRIMARY KEY,
	routine_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('success', 'skipped', 'failed')),
	error TEXT,
	started_at DATETIME NOT NULL,
	ended_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_execution_log_routine ON execution_log(routine_id);
CREATE INDEX IF NOT EXISTS idx_execution_log_status ON execution_log(status);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install - create the schema directly and mark all
		// migrations as applied so they never run against it.
		if _, err := db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for i := 1; i <= len(migrations); i++ {
			if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", i); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
