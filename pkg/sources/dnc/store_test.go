package dnc

import (
	"context"
	"path/filepath"
	"testing"
)

func createTempRegistry(t *testing.T, config *Config) *Store {
	t.Helper()

	if config == nil {
		config = &Config{}
	}
	if config.Path == "" {
		config.Path = filepath.Join(t.TempDir(), "dnc.db")
	}

	store, err := NewStore(config)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Version: "2026-08-01",
		Global:  []string{"+15550001111", "+15550002222"},
		Organizations: map[string][]string{
			"org-1": {"+15551230001"},
			"org-2": {"+15551230002", "+15551230003"},
		},
	}
}

func TestStore_EmptyRegistry(t *testing.T) {
	store := createTempRegistry(t, nil)

	suppressed, err := store.Suppressed(context.Background(), "org-1", "+15551234567")
	if err != nil {
		t.Fatalf("Suppressed() failed: %v", err)
	}
	if suppressed {
		t.Error("Suppressed() = true on an empty registry")
	}
}

func TestStore_GlobalAndOrgLists(t *testing.T) {
	store := createTempRegistry(t, nil)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, testSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	tests := []struct {
		name  string
		orgID string
		phone string
		want  bool
	}{
		{"global number, any org", "org-1", "+15550001111", true},
		{"global number, other org", "org-9", "+15550002222", true},
		{"org number, owning org", "org-1", "+15551230001", true},
		// Another organization's list does not suppress this caller.
		{"org number, other org", "org-1", "+15551230002", false},
		{"org number, owning org two", "org-2", "+15551230003", true},
		{"unlisted number", "org-1", "+15559999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suppressed, err := store.Suppressed(ctx, tt.orgID, tt.phone)
			if err != nil {
				t.Fatalf("Suppressed() failed: %v", err)
			}
			if suppressed != tt.want {
				t.Errorf("Suppressed(%s, %s) = %v, want %v", tt.orgID, tt.phone, suppressed, tt.want)
			}
		})
	}
}

func TestStore_ReplaceAllSwapsEverything(t *testing.T) {
	store := createTempRegistry(t, nil)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, testSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	// Warm the decision cache with the soon-to-be-removed number.
	if suppressed, _ := store.Suppressed(ctx, "org-1", "+15550001111"); !suppressed {
		t.Fatal("Suppressed() = false before the swap")
	}

	next := &Snapshot{
		Version: "2026-08-02",
		Global:  []string{"+15557770000"},
	}
	if err := store.ReplaceAll(ctx, next); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	// The old number must disappear even though the cache had it.
	suppressed, err := store.Suppressed(ctx, "org-1", "+15550001111")
	if err != nil {
		t.Fatalf("Suppressed() failed: %v", err)
	}
	if suppressed {
		t.Error("Suppressed() = true for a number the new snapshot dropped")
	}

	suppressed, err = store.Suppressed(ctx, "org-1", "+15557770000")
	if err != nil {
		t.Fatalf("Suppressed() failed: %v", err)
	}
	if !suppressed {
		t.Error("Suppressed() = false for the new snapshot's number")
	}
}

func TestStore_RestoreAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnc.db")
	ctx := context.Background()

	store, err := NewStore(&Config{Path: path})
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if err := store.ReplaceAll(ctx, testSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewStore(&Config{Path: path})
	if err != nil {
		t.Fatalf("NewStore() after reopen failed: %v", err)
	}
	defer reopened.Close()

	suppressed, err := reopened.Suppressed(ctx, "org-1", "+15550001111")
	if err != nil {
		t.Fatalf("Suppressed() failed: %v", err)
	}
	if !suppressed {
		t.Error("Suppressed() = false after reopen, the snapshot was not restored")
	}

	stats := reopened.Stats()
	if stats.Version != "2026-08-01" {
		t.Errorf("Version = %q, want the persisted snapshot version", stats.Version)
	}
	if reopened.UpdatedAt().IsZero() {
		t.Error("UpdatedAt() is zero after restore")
	}
}

func TestStore_Stats(t *testing.T) {
	store := createTempRegistry(t, nil)

	if err := store.ReplaceAll(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	stats := store.Stats()
	if stats.GlobalCount != 2 {
		t.Errorf("GlobalCount = %d, want 2", stats.GlobalCount)
	}
	if stats.OrgCount != 3 {
		t.Errorf("OrgCount = %d, want 3", stats.OrgCount)
	}
	if stats.Organizations != 2 {
		t.Errorf("Organizations = %d, want 2", stats.Organizations)
	}
	if stats.Version != "2026-08-01" {
		t.Errorf("Version = %q, want 2026-08-01", stats.Version)
	}
	if stats.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero")
	}
}

func TestStore_CacheDisabled(t *testing.T) {
	store := createTempRegistry(t, &Config{CacheSize: -1})
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, testSnapshot()); err != nil {
		t.Fatalf("ReplaceAll() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		suppressed, err := store.Suppressed(ctx, "org-1", "+15550001111")
		if err != nil {
			t.Fatalf("Suppressed() failed: %v", err)
		}
		if !suppressed {
			t.Error("Suppressed() = false without the cache")
		}
	}
}

func TestStore_ContextCancelled(t *testing.T) {
	store := createTempRegistry(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Suppressed(ctx, "org-1", "+15551234567"); err == nil {
		t.Error("Suppressed() succeeded with a cancelled context")
	}
	if err := store.ReplaceAll(ctx, testSnapshot()); err == nil {
		t.Error("ReplaceAll() succeeded with a cancelled context")
	}
}

func TestStore_Ping(t *testing.T) {
	store := createTempRegistry(t, nil)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}

func BenchmarkStore_Suppressed(b *testing.B) {
	dir := b.TempDir()
	store, err := NewStore(&Config{Path: filepath.Join(dir, "dnc.db")})
	if err != nil {
		b.Fatalf("NewStore() failed: %v", err)
	}
	defer store.Close()

	if err := store.ReplaceAll(context.Background(), testSnapshot()); err != nil {
		b.Fatalf("ReplaceAll() failed: %v", err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Suppressed(ctx, "org-1", "+15559999999"); err != nil {
			b.Fatalf("Suppressed() failed: %v", err)
		}
	}
}
