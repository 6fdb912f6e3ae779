// Package testenv assembles a complete seeded data directory for
// integration tests: every store the service opens, populated with a
// small account roster and attempt history, plus a config file
// pointing at all of it.
package testenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"veritel-hq/dialguard/pkg/clearance"
	"veritel-hq/dialguard/pkg/sources/crm"
	"veritel-hq/dialguard/pkg/sources/dnc"
	"veritel-hq/dialguard/pkg/sources/history"
)

// The seeded roster. Tests assert against these, so changing one means
// revisiting every integration scenario built on it.
const (
	Org = "org-1"

	AccountClear     = "acct-clear"      // no flags, consent granted
	AccountHeld      = "acct-held"       // permanent hold
	AccountAttorney  = "acct-attorney"   // attorney represented
	AccountBankrupt  = "acct-bankrupt"   // active bankruptcy
	AccountRevoked   = "acct-revoked"    // consent revoked
	AccountLegalHold = "acct-legal-hold" // active legal hold

	PhoneClear         = "+12125550100"
	PhoneSuppressed    = "+12125550101" // on the global suppression list
	PhoneOrgSuppressed = "+12125550102" // on the organization's own list
	PhoneCapped        = "+12125550103" // at the frequency cap already
	PhoneCooldown      = "+12125550104" // connected conversation yesterday

	// ListenAddress is the fixed port the config file assigns, for
	// tests that start the real binary.
	ListenAddress = "127.0.0.1:18086"

	// FrequencyCap is the cap the config file sets; PhoneCapped is
	// seeded with exactly this many recent attempts.
	FrequencyCap = 3
)

// Env is one seeded data directory and the paths inside it.
type Env struct {
	Dir              string
	ConfigPath       string
	AuditPath        string
	AccountsPath     string
	DNCPath          string
	HistoryPath      string
	JurisdictionPath string
}

// New builds a seeded environment under a test temp directory. Every
// store is opened, populated, and closed again, so the caller (or the
// service binary) reopens them cold the way a deployment would.
func New(t *testing.T) *Env {
	t.Helper()

	dir := t.TempDir()
	env := &Env{
		Dir:              dir,
		ConfigPath:       filepath.Join(dir, "config.yaml"),
		AuditPath:        filepath.Join(dir, "audit.db"),
		AccountsPath:     filepath.Join(dir, "accounts.db"),
		DNCPath:          filepath.Join(dir, "dnc.db"),
		HistoryPath:      filepath.Join(dir, "attempts.db"),
		JurisdictionPath: filepath.Join(dir, "jurisdictions.yaml"),
	}

	seedAccounts(t, env)
	seedSuppression(t, env)
	seedHistory(t, env)
	writeJurisdictionTable(t, env)
	writeConfig(t, env)

	return env
}

func seedAccounts(t *testing.T, env *Env) {
	t.Helper()

	store, err := crm.NewStore(&crm.Config{Path: env.AccountsPath})
	if err != nil {
		t.Fatalf("seeding account replica: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	records := []*crm.AccountRecord{
		{OrganizationID: Org, AccountID: AccountClear, ConsentStatus: clearance.ConsentGranted},
		{OrganizationID: Org, AccountID: AccountHeld, PermanentHold: true},
		{OrganizationID: Org, AccountID: AccountAttorney, AttorneyRepresented: true},
		{OrganizationID: Org, AccountID: AccountBankrupt, BankruptcyActive: true},
		{OrganizationID: Org, AccountID: AccountRevoked, ConsentStatus: clearance.ConsentRevoked},
		{OrganizationID: Org, AccountID: AccountLegalHold, LegalHold: true},
	}
	for _, record := range records {
		if err := store.Upsert(ctx, record); err != nil {
			t.Fatalf("seeding account %s: %v", record.AccountID, err)
		}
	}
}

func seedSuppression(t *testing.T, env *Env) {
	t.Helper()

	store, err := dnc.NewStore(&dnc.Config{Path: env.DNCPath})
	if err != nil {
		t.Fatalf("seeding suppression registry: %v", err)
	}
	defer store.Close()

	snapshot := &dnc.Snapshot{
		Version: "testenv",
		Global:  []string{PhoneSuppressed},
		Organizations: map[string][]string{
			Org: {PhoneOrgSuppressed},
		},
	}
	if err := store.ReplaceAll(context.Background(), snapshot); err != nil {
		t.Fatalf("loading suppression snapshot: %v", err)
	}
}

func seedHistory(t *testing.T, env *Env) {
	t.Helper()

	store, err := history.NewSQLiteStoreWithConfig(history.SQLiteConfig{Path: env.HistoryPath})
	if err != nil {
		t.Fatalf("seeding attempt log: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	// PhoneCapped sits exactly at the cap inside the trailing window.
	for i := 0; i < FrequencyCap; i++ {
		attempt := &history.Attempt{
			OrganizationID: Org,
			AccountID:      AccountClear,
			PhoneNumber:    PhoneCapped,
			Disposition:    history.DispositionNoAnswer,
			OccurredAt:     now.Add(-time.Duration(i+1) * 6 * time.Hour),
		}
		if err := store.Record(ctx, attempt); err != nil {
			t.Fatalf("seeding capped attempt %d: %v", i, err)
		}
	}

	// PhoneCooldown had a live conversation well inside the cooldown
	// window.
	cooldown := &history.Attempt{
		OrganizationID: Org,
		AccountID:      AccountClear,
		PhoneNumber:    PhoneCooldown,
		Disposition:    history.DispositionConnected,
		OccurredAt:     now.Add(-24 * time.Hour),
	}
	if err := store.Record(ctx, cooldown); err != nil {
		t.Fatalf("seeding cooldown attempt: %v", err)
	}
}

func writeJurisdictionTable(t *testing.T, env *Env) {
	t.Helper()

	table := `version: testenv
jurisdictions:
  MA:
    consent_notice_required: true
    consent_notice_text: "Massachusetts regulation 940 CMR 7.00 notice required"
  NY:
    claim_enforceability_years: 6
`
	if err := os.WriteFile(env.JurisdictionPath, []byte(table), 0o600); err != nil {
		t.Fatalf("writing jurisdiction table: %v", err)
	}
}

func writeConfig(t *testing.T, env *Env) {
	t.Helper()

	cfg := fmt.Sprintf(`server:
  listen_address: "%s"

engine:
  frequency_cap: %d

audit:
  sqlite:
    path: "%s"

sources:
  accounts:
    path: "%s"
  dnc:
    path: "%s"
  history:
    path: "%s"
  timezone:
    default_zone: "America/New_York"
  jurisdiction:
    path: "%s"

telemetry:
  logging:
    level: "warn"
    format: "json"
`,
		ListenAddress,
		FrequencyCap,
		env.AuditPath,
		env.AccountsPath,
		env.DNCPath,
		env.HistoryPath,
		env.JurisdictionPath,
	)
	if err := os.WriteFile(env.ConfigPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}
