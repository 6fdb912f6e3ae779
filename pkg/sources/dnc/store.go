package dnc

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bloomfilter "github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	bbolt "go.etcd.io/bbolt"

	"veritel-hq/dialguard/pkg/clearance"
)

var (
	bucketGlobal = []byte("global")
	bucketOrgs   = []byte("orgs")
	bucketMeta   = []byte("meta")
)

var (
	metaVersion = []byte("version")
	metaUpdated = []byte("updated")
)

// Config contains configuration for the suppression registry.
type Config struct {
	// Path is the bbolt database file path.
	Path string

	// CacheSize is the capacity of the per-target decision cache.
	// Zero or negative disables the cache. Default: 4096
	CacheSize int

	// BloomFPRate is the target false-positive rate for the bloom
	// filter. Default: 0.001
	BloomFPRate float64
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "data/dnc.db",
		CacheSize:   4096,
		BloomFPRate: 0.001,
	}
}

// Stats describes the currently loaded suppression snapshot.
type Stats struct {
	GlobalCount   int
	OrgCount      int
	Organizations int
	Version       string
	UpdatedAt     time.Time
}

// Store is the bbolt-backed do-not-contact registry. Lookups pass a
// bloom filter and an LRU decision cache before touching bolt; snapshot
// loads replace all three structures atomically.
type Store struct {
	db     *bbolt.DB
	config *Config
	logger *slog.Logger

	mu      sync.RWMutex
	filter  *bloomfilter.BloomFilter // nil until a snapshot is present
	cache   *lru.Cache[string, bool] // nil when disabled
	version string
	updated time.Time
}

var _ clearance.DNCRegistry = (*Store)(nil)

// NewStore opens (or creates) the registry database at config.Path. If
// the database already holds a snapshot from a previous run, the bloom
// filter is rebuilt from it so lookups are served immediately.
func NewStore(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CacheSize == 0 {
		config.CacheSize = DefaultConfig().CacheSize
	}
	if config.BloomFPRate <= 0 {
		config.BloomFPRate = DefaultConfig().BloomFPRate
	}

	db, err := bbolt.Open(config.Path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening suppression database: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketGlobal, bucketOrgs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing suppression database: %w", err)
	}

	s := &Store{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "sources.dnc"),
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, bool](config.CacheSize)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating decision cache: %w", err)
		}
		s.cache = cache
	}

	if err := s.restore(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Suppressed reports whether the number appears on the organization's
// suppression list or the global list.
func (s *Store) Suppressed(ctx context.Context, orgID, phone string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := orgID + "/" + phone

	s.mu.RLock()
	filter := s.filter
	cache := s.cache
	s.mu.RUnlock()

	if cache != nil {
		if suppressed, ok := cache.Get(key); ok {
			return suppressed, nil
		}
	}

	// The filter holds every suppressed number across all lists, so a
	// miss is a definitive "not suppressed".
	if filter != nil && !filter.Test([]byte(phone)) {
		if cache != nil {
			cache.Add(key, false)
		}
		return false, nil
	}

	var suppressed bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketGlobal); b != nil && b.Get([]byte(phone)) != nil {
			suppressed = true
			return nil
		}
		if orgs := tx.Bucket(bucketOrgs); orgs != nil {
			if b := orgs.Bucket([]byte(orgID)); b != nil && b.Get([]byte(phone)) != nil {
				suppressed = true
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("suppression lookup: %w", err)
	}

	if cache != nil {
		cache.Add(key, suppressed)
	}
	return suppressed, nil
}

// ReplaceAll atomically replaces every suppression list with the
// snapshot's contents. Until the replacement commits, lookups keep
// serving the previous snapshot; afterwards the bloom filter and the
// decision cache reflect only the new one.
func (s *Store) ReplaceAll(ctx context.Context, snapshot *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Build the new filter before touching bolt so a failure leaves the
	// registry untouched.
	capacity := uint(snapshot.TotalNumbers())
	if capacity == 0 {
		capacity = 1
	}
	filter := bloomfilter.NewWithEstimates(capacity, s.config.BloomFPRate)
	for _, phone := range snapshot.Global {
		filter.Add([]byte(phone))
	}
	for _, numbers := range snapshot.Organizations {
		for _, phone := range numbers {
			filter.Add([]byte(phone))
		}
	}

	now := time.Now().UTC()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketGlobal, bucketOrgs} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}

		global, err := tx.CreateBucket(bucketGlobal)
		if err != nil {
			return err
		}
		for _, phone := range snapshot.Global {
			if err := global.Put([]byte(phone), []byte{1}); err != nil {
				return err
			}
		}

		orgs, err := tx.CreateBucket(bucketOrgs)
		if err != nil {
			return err
		}
		for orgID, numbers := range snapshot.Organizations {
			b, err := orgs.CreateBucket([]byte(orgID))
			if err != nil {
				return err
			}
			for _, phone := range numbers {
				if err := b.Put([]byte(phone), []byte{1}); err != nil {
					return err
				}
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(metaVersion, []byte(snapshot.Version)); err != nil {
			return err
		}
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(ubuf, uint64(now.Unix()))
		return meta.Put(metaUpdated, ubuf)
	})
	if err != nil {
		return fmt.Errorf("replacing suppression lists: %w", err)
	}

	s.mu.Lock()
	s.filter = filter
	s.version = snapshot.Version
	s.updated = now
	if s.cache != nil {
		s.cache.Purge()
	}
	s.mu.Unlock()

	s.logger.Info("suppression snapshot loaded",
		"version", snapshot.Version,
		"global_numbers", len(snapshot.Global),
		"organizations", len(snapshot.Organizations),
		"total_numbers", snapshot.TotalNumbers(),
	)

	return nil
}

// Stats returns counts and metadata for the loaded snapshot.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	stats := Stats{
		Version:   s.version,
		UpdatedAt: s.updated,
	}
	s.mu.RUnlock()

	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketGlobal); b != nil {
			stats.GlobalCount = b.Stats().KeyN
		}
		if orgs := tx.Bucket(bucketOrgs); orgs != nil {
			c := orgs.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if v != nil {
					continue // nested buckets have nil values
				}
				stats.Organizations++
				if b := orgs.Bucket(k); b != nil {
					stats.OrgCount += b.Stats().KeyN
				}
			}
		}
		return nil
	})

	return stats
}

// UpdatedAt returns when the current snapshot was loaded, or the zero
// time when no snapshot has ever been loaded.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Ping verifies the database is readable. Used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error { return nil })
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// restore rebuilds the bloom filter and metadata from a database written
// by a previous run.
func (s *Store) restore() error {
	var (
		total   int
		version string
		updated time.Time
	)

	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketGlobal); b != nil {
			total += b.Stats().KeyN
		}
		if orgs := tx.Bucket(bucketOrgs); orgs != nil {
			c := orgs.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if v != nil {
					continue
				}
				if b := orgs.Bucket(k); b != nil {
					total += b.Stats().KeyN
				}
			}
		}
		if meta := tx.Bucket(bucketMeta); meta != nil {
			version = string(meta.Get(metaVersion))
			if v := meta.Get(metaUpdated); len(v) == 8 {
				updated = time.Unix(int64(binary.BigEndian.Uint64(v)), 0).UTC()
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reading suppression database: %w", err)
	}

	if total == 0 {
		return nil
	}

	filter := bloomfilter.NewWithEstimates(uint(total), s.config.BloomFPRate)
	err = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketGlobal); b != nil {
			if err := b.ForEach(func(k, _ []byte) error {
				filter.Add(k)
				return nil
			}); err != nil {
				return err
			}
		}
		if orgs := tx.Bucket(bucketOrgs); orgs != nil {
			c := orgs.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if v != nil {
					continue
				}
				b := orgs.Bucket(k)
				if b == nil {
					continue
				}
				if err := b.ForEach(func(k, _ []byte) error {
					filter.Add(k)
					return nil
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuilding suppression filter: %w", err)
	}

	s.mu.Lock()
	s.filter = filter
	s.version = version
	s.updated = updated
	s.mu.Unlock()

	s.logger.Info("suppression database restored",
		"version", version,
		"total_numbers", total,
	)

	return nil
}
