package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the decision record schema.
//
// The audit_log table is append-only: triggers abort any UPDATE or DELETE
// so that not even a bug in this process can rewrite history. The
// sequence column is the chain order; chain_hash makes out-of-band edits
// detectable.
const Schema = `
-- Decision record entries
CREATE TABLE IF NOT EXISTS audit_log (
    sequence INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,

    -- Evaluation linkage
    evaluation_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,

    -- Decision
    rule TEXT NOT NULL,
    outcome TEXT NOT NULL CHECK (outcome IN ('pass', 'block', 'warn', 'system_error')),
    code TEXT,
    reason TEXT,

    -- Target
    masked_phone TEXT NOT NULL,

    -- Timing
    occurred_at TIMESTAMP NOT NULL,

    -- Tamper evidence
    chain_hash TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Append-only enforcement
CREATE TRIGGER IF NOT EXISTS audit_log_no_update
BEFORE UPDATE ON audit_log
BEGIN
    SELECT RAISE(ABORT, 'audit_log is append-only');
END;

CREATE TRIGGER IF NOT EXISTS audit_log_no_delete
BEFORE DELETE ON audit_log
BEGIN
    SELECT RAISE(ABORT, 'audit_log is append-only');
END;

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_audit_log_evaluation_id ON audit_log(evaluation_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_organization_id ON audit_log(organization_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_rule ON audit_log(rule);
CREATE INDEX IF NOT EXISTS idx_audit_log_outcome ON audit_log(outcome);
CREATE INDEX IF NOT EXISTS idx_audit_log_occurred_at ON audit_log(occurred_at);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
