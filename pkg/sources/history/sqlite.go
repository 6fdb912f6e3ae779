package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is
// suitable for single-instance deployments where the attempt log must
// survive restarts.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent
// performance and periodic checkpointing to balance write performance
// with durability.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	// preparedStatements contains pre-compiled SQL statements for performance
	recordStmt         *sql.Stmt
	countStmt          *sql.Stmt
	countConnectedStmt *sql.Stmt
	recentStmt         *sql.Stmt
	pruneStmt          *sql.Stmt
}

// SQLiteConfig configures the SQLite attempt log.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a new SQLite attempt log with default settings.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{
		Path:               path,
		CheckpointInterval: 5 * time.Minute,
		BusyTimeout:        5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig creates a new SQLite attempt log with custom
// configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	// Apply defaults
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	// Open database with WAL mode and busy timeout
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.Path,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Prepare statements
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	// Start background checkpoint goroutine
	go store.checkpointLoop()

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		evaluation_id TEXT,
		organization_id TEXT NOT NULL,
		account_id TEXT,
		phone_number TEXT NOT NULL,
		disposition TEXT NOT NULL,
		connected INTEGER NOT NULL DEFAULT 0,
		occurred_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_target ON attempts(organization_id, phone_number, occurred_at);
	CREATE INDEX IF NOT EXISTS idx_attempts_occurred ON attempts(occurred_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements prepares SQL statements for reuse.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO attempts (id, evaluation_id, organization_id, account_id, phone_number, disposition, connected, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	s.countStmt, err = s.db.Prepare(`
		SELECT COUNT(*) FROM attempts
		WHERE organization_id = ? AND phone_number = ? AND occurred_at >= ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare count statement: %w", err)
	}

	s.countConnectedStmt, err = s.db.Prepare(`
		SELECT COUNT(*) FROM attempts
		WHERE organization_id = ? AND phone_number = ? AND occurred_at >= ? AND connected = 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare connected count statement: %w", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, evaluation_id, organization_id, account_id, phone_number, disposition, connected, occurred_at
		FROM attempts
		WHERE organization_id = ? AND phone_number = ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`
		DELETE FROM attempts
		WHERE occurred_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Record persists a contact attempt. It assigns an ID when the attempt
// has none and derives the Connected flag from the disposition so the
// two can never disagree.
func (s *SQLiteStore) Record(ctx context.Context, attempt *Attempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("invalid attempt: %w", err)
	}

	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.OccurredAt.IsZero() {
		attempt.OccurredAt = time.Now().UTC()
	}
	attempt.Connected = attempt.Disposition == DispositionConnected

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.recordStmt.ExecContext(ctx,
		attempt.ID,
		attempt.EvaluationID,
		attempt.OrganizationID,
		attempt.AccountID,
		attempt.PhoneNumber,
		attempt.Disposition,
		boolToInt(attempt.Connected),
		attempt.OccurredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	return nil
}

// CountAttempts returns the number of attempts to the target phone since
// the given time. When connectedOnly is true, only attempts with a live
// conversation are counted.
func (s *SQLiteStore) CountAttempts(ctx context.Context, orgID, phone string, since time.Time, connectedOnly bool) (int, error) {
	if orgID == "" {
		return 0, fmt.Errorf("organization id cannot be empty")
	}
	if phone == "" {
		return 0, fmt.Errorf("phone number cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stmt := s.countStmt
	if connectedOnly {
		stmt = s.countConnectedStmt
	}

	var count int
	if err := stmt.QueryRowContext(ctx, orgID, phone, since.Unix()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	return count, nil
}

// Recent returns the most recent attempts for a target, newest first.
// A non-positive limit returns up to 50 attempts.
func (s *SQLiteStore) Recent(ctx context.Context, orgID, phone string, limit int) ([]*Attempt, error) {
	if orgID == "" {
		return nil, fmt.Errorf("organization id cannot be empty")
	}
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.recentStmt.QueryContext(ctx, orgID, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return attempts, nil
}

// Prune deletes attempts older than the cutoff and returns how many were
// removed.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.pruneStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// Ping verifies the database is reachable. Used by readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging attempt log: %w", err)
	}
	return nil
}

// Close releases any resources held by the store.
// Close is idempotent and safe to call multiple times.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		// Signal checkpoint goroutine to stop
		close(s.done)

		// Close prepared statements
		if s.recordStmt != nil {
			s.recordStmt.Close()
		}
		if s.countStmt != nil {
			s.countStmt.Close()
		}
		if s.countConnectedStmt != nil {
			s.countConnectedStmt.Close()
		}
		if s.recentStmt != nil {
			s.recentStmt.Close()
		}
		if s.pruneStmt != nil {
			s.pruneStmt.Close()
		}

		// Close database
		if s.db != nil {
			// Run final checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Run checkpoint
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}

func scanAttempt(rows *sql.Rows) (*Attempt, error) {
	var (
		attempt    Attempt
		connected  int
		occurredAt int64
	)

	if err := rows.Scan(
		&attempt.ID,
		&attempt.EvaluationID,
		&attempt.OrganizationID,
		&attempt.AccountID,
		&attempt.PhoneNumber,
		&attempt.Disposition,
		&connected,
		&occurredAt,
	); err != nil {
		return nil, err
	}

	attempt.Connected = connected != 0
	attempt.OccurredAt = time.Unix(occurredAt, 0).UTC()
	return &attempt, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
