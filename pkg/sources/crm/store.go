// Package crm provides the account-state data source: hold flags,
// consent status, and legal holds, read from a local SQLite replica of
// the CRM. The replica is maintained by an upstream sync; this package
// only reads it on the evaluation path and exposes Upsert for the sync
// and for test seeding.
package crm

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"veritel-hq/dialguard/pkg/clearance"
)

// Config contains configuration for the account replica.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default replica configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:         "data/accounts.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// AccountRecord is one account's compliance-relevant state, as written by
// the upstream sync.
type AccountRecord struct {
	OrganizationID      string
	AccountID           string
	PermanentHold       bool
	AttorneyRepresented bool
	BankruptcyActive    bool
	ConsentStatus       clearance.ConsentStatus
	LegalHold           bool
}

// Store reads account state from the SQLite replica. It implements the
// account flag, consent, and legal hold source interfaces.
type Store struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

var (
	_ clearance.AccountFlagStore = (*Store)(nil)
	_ clearance.ConsentStore     = (*Store)(nil)
	_ clearance.LegalHoldStore   = (*Store)(nil)
)

// NewStore opens (or creates) the account replica at config.Path.
func NewStore(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}

	logger := slog.Default().With("component", "sources.crm")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening account replica: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("account replica initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("inserting schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// Flags returns the hold flags for an account. An account the replica
// has never seen has no flags.
func (s *Store) Flags(ctx context.Context, orgID, accountID string) (clearance.AccountFlags, error) {
	var flags clearance.AccountFlags
	err := s.db.QueryRowContext(ctx,
		"SELECT permanent_hold, attorney_represented, bankruptcy_active FROM accounts WHERE organization_id = ? AND account_id = ?",
		orgID, accountID,
	).Scan(&flags.PermanentHold, &flags.AttorneyRepresented, &flags.BankruptcyActive)
	if err == sql.ErrNoRows {
		return clearance.AccountFlags{}, nil
	}
	if err != nil {
		return clearance.AccountFlags{}, fmt.Errorf("reading account flags: %w", err)
	}
	return flags, nil
}

// Status returns the consent status for an account. An account the
// replica has never seen has unknown consent.
func (s *Store) Status(ctx context.Context, orgID, accountID string) (clearance.ConsentStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		"SELECT consent_status FROM accounts WHERE organization_id = ? AND account_id = ?",
		orgID, accountID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return clearance.ConsentUnknown, nil
	}
	if err != nil {
		return clearance.ConsentUnknown, fmt.Errorf("reading consent status: %w", err)
	}
	return clearance.ConsentStatus(status), nil
}

// ActiveHold reports whether the account has an active legal hold.
func (s *Store) ActiveHold(ctx context.Context, orgID, accountID string) (bool, error) {
	var hold bool
	err := s.db.QueryRowContext(ctx,
		"SELECT legal_hold FROM accounts WHERE organization_id = ? AND account_id = ?",
		orgID, accountID,
	).Scan(&hold)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading legal hold: %w", err)
	}
	return hold, nil
}

// Upsert writes one account's state, replacing any previous row. Used by
// the upstream sync and by tests.
func (s *Store) Upsert(ctx context.Context, record *AccountRecord) error {
	consent := record.ConsentStatus
	if consent == "" {
		consent = clearance.ConsentUnknown
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			organization_id, account_id,
			permanent_hold, attorney_represented, bankruptcy_active,
			consent_status, legal_hold,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(organization_id, account_id) DO UPDATE SET
			permanent_hold = excluded.permanent_hold,
			attorney_represented = excluded.attorney_represented,
			bankruptcy_active = excluded.bankruptcy_active,
			consent_status = excluded.consent_status,
			legal_hold = excluded.legal_hold,
			updated_at = excluded.updated_at
	`,
		record.OrganizationID, record.AccountID,
		record.PermanentHold, record.AttorneyRepresented, record.BankruptcyActive,
		string(consent), record.LegalHold,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting account: %w", err)
	}
	return nil
}

// Ping verifies the replica is reachable. Used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging account replica: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing account replica: %w", err)
	}
	s.logger.Info("account replica closed")
	return nil
}
