// Package models defines the core domain models for splitclaim.
//
// # Models
//
//   - Bill: a receipt-derived record of line items and a declared total
//   - Item: one line of a bill, with the users who claimed shares of it
//   - Claimer: a (user, share count) pairing against one item
//   - User: a participant identified by a public id and a private bearer id
//   - ScanResult: the structured payload produced by receipt extraction
//   - BillView: the reconciled, read-only projection returned to viewers
//
// # Invariants
//
//  1. A bill is immutable after creation except for the claimers of its items.
//  2. At most one Claimer per (item, user) pair; zero shares are never stored.
//  3. The auto-distributed "Unaccounted" item only ever exists in a BillView.
//  4. A user's private id never leaves the owner; only the public id is shared.
package models
