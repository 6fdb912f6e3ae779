// Package dnc implements the do-not-contact registry: suppression-list
// lookups by phone number against an organization-scoped list and a
// shared global list.
//
// # Storage Layout
//
// Suppressed numbers live in a bbolt database with three buckets:
//
//	global  one key per globally suppressed number
//	orgs    one nested bucket per organization, one key per number
//	meta    snapshot version and load timestamp
//
// Lookups are served through two read-side accelerators:
//
//  1. A bloom filter over every suppressed number. Most numbers are not
//     suppressed, and the filter answers those without touching bolt.
//  2. An LRU cache of recent per-target decisions.
//
// Both are rebuilt or purged atomically when a new snapshot loads, so a
// lookup never mixes data from two snapshots.
//
// # Snapshots
//
// The registry is replaced wholesale from YAML snapshot files produced by
// the upstream list vendor. Refresher reloads the snapshot on a cron
// schedule; a failed load keeps the previous snapshot serving.
package dnc
