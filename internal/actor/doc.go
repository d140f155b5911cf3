// Package actor serialises work per key.
//
// A Registry owns one mailbox goroutine per key that currently has work.
// Jobs for the same key run one at a time in arrival order; jobs for
// different keys run concurrently. A mailbox is retired as soon as it has
// nothing pending, so an idle key costs nothing, and it is created again on
// the next job. Creation and retirement both happen under the registry lock,
// which guarantees there is never more than one mailbox for a key.
package actor
