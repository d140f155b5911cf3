package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mmynk/splitclaim/internal/metrics"
)

// DefaultMaxViewers is the per-bill connection cap when none is configured.
const DefaultMaxViewers = 64

type config struct {
	clock        clockwork.Clock
	maxViewers   int
	writeTimeout time.Duration
	checkOrigin  func(*http.Request) bool
	metrics      *metrics.BroadcastMetrics
}

// Option configures a Hub.
type Option func(*config)

// WithClock sets the clock used for write deadlines.
func WithClock(clock clockwork.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithMaxViewers caps live connections per bill. Zero means no cap.
func WithMaxViewers(n int) Option {
	return func(c *config) { c.maxViewers = n }
}

// WithWriteTimeout bounds each websocket write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithCheckOrigin sets the upgrade origin policy.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *config) { c.checkOrigin = fn }
}

// WithMetrics enables connection metrics.
func WithMetrics(m *metrics.BroadcastMetrics) Option {
	return func(c *config) { c.metrics = m }
}

// Hub maps bill ids to their broadcast actors.
type Hub struct {
	cfg      config
	upgrader websocket.Upgrader

	mu     sync.Mutex
	actors map[string]*Actor
	closed bool
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	cfg := config{
		clock:        clockwork.NewRealClock(),
		maxViewers:   DefaultMaxViewers,
		writeTimeout: defaultWriteTimeout,
		checkOrigin:  func(*http.Request) bool { return true },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Hub{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: cfg.checkOrigin},
		actors:   make(map[string]*Actor),
	}
}

// actor returns billID's actor, creating it when create is set.
func (h *Hub) actor(billID string, create bool) (*Actor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrStopped
	}
	a, ok := h.actors[billID]
	if !ok && create {
		a = newActor(billID, &h.cfg, h.retire)
		h.actors[billID] = a
	}
	return a, nil
}

// retire removes a from the hub if it is still the bill's current actor.
func (h *Hub) retire(a *Actor) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.actors[a.billID] != a {
		return false
	}
	delete(h.actors, a.billID)
	return true
}

// Accept upgrades the request and registers the connection with billID's
// actor. On failure the upgrader has already replied or the socket is
// closed.
func (h *Hub) Accept(w http.ResponseWriter, r *http.Request, billID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}
	return h.Register(r.Context(), billID, conn)
}

// Register adds an already upgraded connection to billID's live set.
func (h *Hub) Register(ctx context.Context, billID string, conn *websocket.Conn) error {
	for {
		a, err := h.actor(billID, true)
		if err != nil {
			_ = conn.Close()
			return err
		}

		err = a.Register(ctx, conn)
		if errors.Is(err, ErrStopped) {
			// The actor exited before seeing conn. Drop it if still mapped;
			// the next lookup creates a fresh one or reports a closed hub.
			h.retire(a)
			continue
		}
		if err != nil {
			_ = conn.Close()
			return err
		}
		return nil
	}
}

// Broadcast sends msg to every live viewer of billID. A bill without
// viewers is a no-op.
func (h *Hub) Broadcast(ctx context.Context, billID string, msg []byte) error {
	a, err := h.actor(billID, false)
	if err != nil || a == nil {
		return err
	}
	if err := a.Broadcast(ctx, msg); !errors.Is(err, ErrStopped) {
		return err
	}
	return nil
}

// Notify broadcasts a change token to billID's viewers on this instance.
func (h *Hub) Notify(ctx context.Context, billID, token string) error {
	return h.Broadcast(ctx, billID, []byte(token))
}

// Count returns the live connection count for billID.
func (h *Hub) Count(ctx context.Context, billID string) (int, error) {
	a, err := h.actor(billID, false)
	if err != nil || a == nil {
		return 0, err
	}
	n, err := a.Count(ctx)
	if errors.Is(err, ErrStopped) {
		return 0, nil
	}
	return n, err
}

// Close stops every actor, sending viewers a going-away frame.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	actors := h.actors
	h.actors = nil
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, a := range actors {
		wg.Add(1)
		go func(a *Actor) {
			defer wg.Done()
			a.Stop("server shutting down")
		}(a)
	}
	wg.Wait()
	slog.Info("Broadcast hub stopped", "bills", len(actors))
}
