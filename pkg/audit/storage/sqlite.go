package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"veritel-hq/dialguard/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
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

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema, installs the append-only triggers,
// and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	// Open database connection
	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	// Initialize database
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	// Enable WAL mode if configured
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	// Set busy timeout
	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	// Create schema
	_, err = s.db.Exec(Schema)
	if err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	// Insert schema version
	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	// Verify schema version
	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Append persists an entry and assigns its sequence number from the
// database rowid.
func (s *SQLiteStorage) Append(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_log (
			id,
			evaluation_id, organization_id,
			rule, outcome, code, reason,
			masked_phone,
			occurred_at,
			chain_hash
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.EvaluationID, entry.OrganizationID,
		entry.Rule, string(entry.Outcome), entry.Code, entry.Reason,
		entry.MaskedPhone,
		entry.OccurredAt.UTC(),
		entry.ChainHash,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}

	sequence, err := result.LastInsertId()
	if err != nil {
		return audit.NewStorageError("sqlite", "append", err)
	}
	entry.Sequence = sequence

	return nil
}

// Query retrieves entries matching the query filters, in sequence order.
// A zero Limit defaults to 100 to keep interactive queries bounded.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Entry, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT * FROM audit_log"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY sequence " + sortDirection(query)

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*audit.Entry{}
	for rows.Next() {
		entry, err := s.scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// QueryStream returns a channel of entries for memory-efficient streaming.
// Unlike Query, a zero Limit streams every matching entry; chain
// verification depends on seeing the complete record.
// The channels are closed when the query completes or errors.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Entry, <-chan error, error) {
	entriesCh := make(chan *audit.Entry, 100)
	errCh := make(chan error, 1)

	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT * FROM audit_log"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY sequence " + sortDirection(query)

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	go func() {
		defer close(entriesCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			entry, err := s.scanRow(rows)
			if err != nil {
				errCh <- audit.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case entriesCh <- entry:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return entriesCh, errCh, nil
}

// Count returns the number of entries matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit_log"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// LastChainHash returns the chain hash of the most recent entry, or an
// empty string when the record is empty.
func (s *SQLiteStorage) LastChainHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT chain_hash FROM audit_log ORDER BY sequence DESC LIMIT 1").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", audit.NewStorageError("sqlite", "last_chain_hash", err)
	}
	return hash, nil
}

// Ping verifies the database is reachable. Used by readiness probes.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return audit.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite audit storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func (s *SQLiteStorage) buildWhereClause(query *audit.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	// Time range filter
	if query.StartTime != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, query.StartTime.UTC())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, query.EndTime.UTC())
	}

	// Evaluation filters
	if query.EvaluationID != "" {
		conditions = append(conditions, "evaluation_id = ?")
		args = append(args, query.EvaluationID)
	}
	if query.OrganizationID != "" {
		conditions = append(conditions, "organization_id = ?")
		args = append(args, query.OrganizationID)
	}

	// Decision filters
	if query.Rule != "" {
		conditions = append(conditions, "rule = ?")
		args = append(args, query.Rule)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(query.Outcome))
	}
	if query.Code != "" {
		conditions = append(conditions, "code = ?")
		args = append(args, query.Code)
	}

	// Join conditions with AND
	whereClause := ""
	for i, condition := range conditions {
		if i > 0 {
			whereClause += " AND "
		}
		whereClause += condition
	}

	return whereClause, args
}

// scanRow scans a database row into an Entry.
func (s *SQLiteStorage) scanRow(row *sql.Rows) (*audit.Entry, error) {
	var entry audit.Entry
	var outcome string
	var code, reason sql.NullString

	err := row.Scan(
		&entry.Sequence, &entry.ID,
		&entry.EvaluationID, &entry.OrganizationID,
		&entry.Rule, &outcome, &code, &reason,
		&entry.MaskedPhone,
		&entry.OccurredAt,
		&entry.ChainHash,
	)
	if err != nil {
		return nil, err
	}

	entry.Outcome = audit.Outcome(outcome)
	if code.Valid {
		entry.Code = code.String
	}
	if reason.Valid {
		entry.Reason = reason.String
	}
	entry.OccurredAt = entry.OccurredAt.UTC()

	return &entry, nil
}

// sortDirection maps the query sort order to a SQL direction, defaulting
// to ascending sequence order.
func sortDirection(query *audit.Query) string {
	if query.SortOrder == "desc" {
		return "DESC"
	}
	return "ASC"
}
