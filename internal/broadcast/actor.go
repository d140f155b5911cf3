package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mmynk/splitclaim/internal/metrics"
)

// ErrTooManyViewers is returned by register when the bill is at its cap.
var ErrTooManyViewers = errors.New("too many viewers for bill")

// ErrStopped is returned for commands sent to a stopped actor.
var ErrStopped = errors.New("broadcast actor stopped")

type command interface{ isCommand() }

type baseCmd struct{}

func (baseCmd) isCommand() {}

type registerCmd struct {
	baseCmd
	conn  *websocket.Conn
	errCh chan error
}

type broadcastCmd struct {
	baseCmd
	msg []byte
}

type countCmd struct {
	baseCmd
	reply chan int
}

type stopCmd struct {
	baseCmd
	reason string
}

// Actor owns the live connections of one bill.
type Actor struct {
	billID       string
	cmds         chan command
	done         chan struct{}
	clients      map[*websocket.Conn]*clientWriter
	clock        clockwork.Clock
	maxViewers   int
	writeTimeout time.Duration
	metrics      *metrics.BroadcastMetrics

	// retire is asked whether the actor may exit once a reap leaves it with
	// no viewers. It reports false if the actor must keep running.
	retire func(*Actor) bool
}

func newActor(billID string, cfg *config, retire func(*Actor) bool) *Actor {
	a := &Actor{
		billID:       billID,
		cmds:         make(chan command, 64),
		done:         make(chan struct{}),
		clients:      make(map[*websocket.Conn]*clientWriter),
		clock:        cfg.clock,
		maxViewers:   cfg.maxViewers,
		writeTimeout: cfg.writeTimeout,
		metrics:      cfg.metrics,
		retire:       retire,
	}
	go a.run()
	return a
}

func (a *Actor) send(ctx context.Context, cmd command) error {
	select {
	case a.cmds <- cmd:
		return nil
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds conn to the live set. Over the viewer cap the connection is
// closed with a policy-violation frame and ErrTooManyViewers is returned.
func (a *Actor) Register(ctx context.Context, conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	if err := a.send(ctx, registerCmd{conn: conn, errCh: errCh}); err != nil {
		return err
	}

	select {
	case err := <-errCh:
		return err
	case <-a.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Broadcast queues msg for every live connection. It does not wait for
// delivery and reports no per-connection failure.
func (a *Actor) Broadcast(ctx context.Context, msg []byte) error {
	return a.send(ctx, broadcastCmd{msg: msg})
}

// Count returns the number of connections currently in the live set,
// including ones that have died but not yet been reaped.
func (a *Actor) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := a.send(ctx, countCmd{reply: reply}); err != nil {
		return 0, err
	}

	select {
	case n := <-reply:
		return n, nil
	case <-a.done:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Stop closes every connection with a going-away frame and waits for the
// actor to exit.
func (a *Actor) Stop(reason string) {
	if err := a.send(context.Background(), stopCmd{reason: reason}); err != nil {
		return
	}
	<-a.done
}

func (a *Actor) run() {
	defer close(a.done)

	for cmd := range a.cmds {
		switch c := cmd.(type) {
		case registerCmd:
			c.errCh <- a.handleRegister(c.conn)
		case broadcastCmd:
			if a.handleBroadcast(c.msg) {
				slog.Debug("Broadcast actor retired", "bill_id", a.billID)
				return
			}
		case countCmd:
			c.reply <- len(a.clients)
		case stopCmd:
			a.handleStop(c.reason)
			return
		default:
			slog.Warn("Broadcast actor received unknown command", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (a *Actor) handleRegister(conn *websocket.Conn) error {
	if a.maxViewers > 0 && len(a.clients) >= a.maxViewers {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many viewers")
		_ = conn.WriteControl(websocket.CloseMessage, msg, a.clock.Now().Add(a.writeTimeout))
		_ = conn.Close()
		a.metrics.Refused()
		slog.Warn("Rejecting viewer: max viewers reached", "bill_id", a.billID, "max_viewers", a.maxViewers)
		return fmt.Errorf("%w (%d)", ErrTooManyViewers, a.maxViewers)
	}

	a.clients[conn] = newClientWriter(conn, a.clock, a.writeTimeout)
	a.metrics.Connected()
	slog.Debug("Viewer registered", "bill_id", a.billID, "viewers", len(a.clients))
	return nil
}

// handleBroadcast reports whether the actor retired because the reap left
// it empty.
func (a *Actor) handleBroadcast(msg []byte) bool {
	var failed []*websocket.Conn
	for conn, cw := range a.clients {
		if !cw.enqueue(msg) {
			failed = append(failed, conn)
			continue
		}
		a.metrics.Sent()
	}

	for _, conn := range failed {
		a.clients[conn].stop()
		delete(a.clients, conn)
		a.metrics.Reaped()
	}
	if len(failed) == 0 {
		return false
	}
	slog.Debug("Reaped viewers", "bill_id", a.billID, "reaped", len(failed), "remaining", len(a.clients))

	return len(a.clients) == 0 && a.retire != nil && a.retire(a)
}

func (a *Actor) handleStop(reason string) {
	for conn, cw := range a.clients {
		cw.stopGraceful(websocket.CloseGoingAway, reason)
		delete(a.clients, conn)
		a.metrics.Closed()
	}
}
