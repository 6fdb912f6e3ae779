package dnc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSnapshotFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dnc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing snapshot file: %v", err)
	}
	return path
}

func TestSnapshot_TotalNumbers(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     int
	}{
		{"empty", Snapshot{}, 0},
		{"global only", Snapshot{Global: []string{"+15550001111"}}, 1},
		{
			"global and orgs",
			Snapshot{
				Global: []string{"+15550001111", "+15550002222"},
				Organizations: map[string][]string{
					"org-1": {"+15551230001"},
					"org-2": {"+15551230002", "+15551230003"},
				},
			},
			5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.TotalNumbers(); got != tt.want {
				t.Errorf("TotalNumbers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadSnapshotFile(t *testing.T) {
	path := writeSnapshotFile(t, `
version: "2026-08-01"
global:
  - "(555) 000-1111"
  - "+1 555 000 2222"
organizations:
  org-1:
    - "555-123-0001"
`)

	snapshot, err := LoadSnapshotFile(path)
	if err != nil {
		t.Fatalf("LoadSnapshotFile() failed: %v", err)
	}

	if snapshot.Version != "2026-08-01" {
		t.Errorf("Version = %q, want 2026-08-01", snapshot.Version)
	}

	// Every number is canonicalized so lookups against normalized request
	// numbers match.
	wantGlobal := []string{"+15550001111", "+15550002222"}
	for i, want := range wantGlobal {
		if snapshot.Global[i] != want {
			t.Errorf("Global[%d] = %q, want %q", i, snapshot.Global[i], want)
		}
	}
	if got := snapshot.Organizations["org-1"][0]; got != "+15551230001" {
		t.Errorf("org-1 entry = %q, want +15551230001", got)
	}
}

func TestLoadSnapshotFile_MissingFile(t *testing.T) {
	_, err := LoadSnapshotFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadSnapshotFile() succeeded for a missing file")
	}
}

func TestLoadSnapshotFile_MalformedYAML(t *testing.T) {
	path := writeSnapshotFile(t, "global: [unclosed")

	_, err := LoadSnapshotFile(path)
	if err == nil {
		t.Fatal("LoadSnapshotFile() succeeded for malformed YAML")
	}
}

func TestLoadSnapshotFile_RejectsBadNumbers(t *testing.T) {
	// One bad entry fails the whole snapshot. Skipping it silently would
	// mean a suppressed target gets called.
	path := writeSnapshotFile(t, `
version: "2026-08-01"
global:
  - "+15550001111"
  - "not-a-phone"
`)

	_, err := LoadSnapshotFile(path)
	if err == nil {
		t.Fatal("LoadSnapshotFile() succeeded with an unparseable number")
	}
	if !strings.Contains(err.Error(), "entry 1") {
		t.Errorf("error %q does not identify the bad entry", err)
	}
}

func TestLoadSnapshotFile_RejectsBadOrgNumbers(t *testing.T) {
	path := writeSnapshotFile(t, `
version: "2026-08-01"
organizations:
  org-1:
    - "123"
`)

	_, err := LoadSnapshotFile(path)
	if err == nil {
		t.Fatal("LoadSnapshotFile() succeeded with an unparseable org number")
	}
	if !strings.Contains(err.Error(), "org-1") {
		t.Errorf("error %q does not identify the organization", err)
	}
}
