package crm

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the account replica schema.
//
// The accounts table is a local replica of the compliance-relevant CRM
// state, maintained by an upstream sync. A missing row means the CRM has
// nothing on file for the account, which reads as no flags, unknown
// consent, and no hold.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    organization_id TEXT NOT NULL,
    account_id TEXT NOT NULL,

    -- Hold flags
    permanent_hold INTEGER NOT NULL DEFAULT 0,
    attorney_represented INTEGER NOT NULL DEFAULT 0,
    bankruptcy_active INTEGER NOT NULL DEFAULT 0,

    -- Consent
    consent_status TEXT NOT NULL DEFAULT 'unknown'
        CHECK (consent_status IN ('granted', 'revoked', 'unknown')),

    -- Legal
    legal_hold INTEGER NOT NULL DEFAULT 0,

    updated_at TIMESTAMP NOT NULL,

    PRIMARY KEY (organization_id, account_id)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);
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
