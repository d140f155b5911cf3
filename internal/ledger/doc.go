// Package ledger implements the per-bill ledger: the single writer that owns
// a bill's canonical record, applies claims to it and derives the reconciled
// view that viewers read.
//
// Every operation on a bill runs on that bill's mailbox (see package actor),
// one at a time and in arrival order, and reloads the bill from storage.
// Nothing is cached between operations; reconciliation is recomputed on every
// read because the remainder item depends on every other item's claimers.
package ledger
