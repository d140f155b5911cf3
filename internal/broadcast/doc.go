// Package broadcast pushes change tokens to websocket viewers of a bill.
//
// Each bill with viewers has an Actor: a goroutine that owns the bill's set
// of live connections and processes register, broadcast, count and stop
// commands one at a time. Every connection gets a clientWriter with a small
// buffered queue, so a broadcast never blocks on a slow peer.
//
// Delivery is best-effort. A connection whose writer has failed, whose peer
// has closed, or whose queue is full is dropped on the next broadcast that
// reaches it. There is no heartbeat, no retry and no backlog replay: a viewer
// that (re)joins is expected to fetch the bill again.
package broadcast
