// Package audit provides the append-only decision record for contact
// clearance evaluations. Every rule the engine evaluates produces exactly
// one immutable entry, so the record reconstructs each decision rule by
// rule after the fact.
//
// # Architecture
//
// The audit system consists of three layers:
//
//  1. Recorder - Assigns identity and chain hashes, writes synchronously
//  2. Storage Backend - Persists entries (SQLite, in-memory for tests)
//  3. Export - Streams entries out as JSON or CSV
//
// # Entries
//
// Each entry captures:
//   - Evaluation linkage (evaluation ID, organization ID)
//   - The rule evaluated and its outcome (pass, block, warn, system_error)
//   - Machine and human readable reasons
//   - The masked target phone number (all but the last four digits)
//   - A tamper-evidence chain hash
//
// # Append-Only Guarantee
//
// The record is write-once. The Storage interface has no update or
// delete operation, the SQLite backend installs triggers that abort any
// UPDATE or DELETE on the table, and each entry's chain hash binds it to
// its predecessor:
//
//	chain_hash(n) = SHA-256(chain_hash(n-1) || entry(n))
//
// VerifyChain recomputes the chain and reports the first entry whose
// stored hash does not match, which detects edits made outside this
// process.
//
// # Recording Flow
//
// Unlike telemetry, audit writes are synchronous: the engine does not
// treat a rule as evaluated until its entry is durably stored, and a
// failed write fails the whole evaluation closed.
//
//	Rule Evaluated
//	     ↓
//	Recorder (assign ID, compute chain hash)
//	     ↓
//	Storage Backend (SQLite, WAL mode)
//	     ↓
//	Entry durable → rule counts as evaluated
//
// # Basic Usage
//
//	// Initialize storage backend
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path: "data/audit.db",
//	    WALMode: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Create the recorder
//	rec := recorder.NewRecorder(store, nil)
//
//	// Append an entry (synchronous)
//	err = rec.Append(ctx, &audit.Entry{
//	    EvaluationID:   evalID,
//	    OrganizationID: "org-1",
//	    Rule:           "do_not_contact",
//	    Outcome:        audit.OutcomeBlock,
//	    Code:           "DO_NOT_CONTACT",
//	    MaskedPhone:    audit.MaskPhone(phone),
//	    OccurredAt:     time.Now(),
//	})
//
// # Querying the Record
//
//	query := &audit.Query{
//	    OrganizationID: "org-1",
//	    Outcome:        audit.OutcomeBlock,
//	    Limit:          100,
//	}
//	entries, err := store.Query(ctx, query)
//
//	// Export to JSON
//	exporter := export.NewJSONExporter(true) // pretty-print
//	exporter.Export(ctx, entries, os.Stdout)
//
// # Thread Safety
//
// All audit types are safe for concurrent use:
//   - Recorder: Serializes appends to keep the chain consistent
//   - Storage: Thread-safe with connection pooling
//   - Query: Stateless, can be executed concurrently
package audit
