package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	defaultWriteTimeout = 5 * time.Second
	messageBufferSize   = 16
)

// clientWriter owns all data writes to one connection. A reader goroutine
// drains inbound frames so close and ping frames are processed; viewers
// never send anything the server acts on.
type clientWriter struct {
	conn         *websocket.Conn
	clock        clockwork.Clock
	writeTimeout time.Duration

	send chan []byte
	done chan struct{}
	dead chan struct{}

	stopOnce sync.Once
	deadOnce sync.Once
	wg       sync.WaitGroup
}

func newClientWriter(conn *websocket.Conn, clock clockwork.Clock, writeTimeout time.Duration) *clientWriter {
	cw := &clientWriter{
		conn:         conn,
		clock:        clock,
		writeTimeout: writeTimeout,
		send:         make(chan []byte, messageBufferSize),
		done:         make(chan struct{}),
		dead:         make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.run()
	go cw.drain()
	return cw
}

func (cw *clientWriter) run() {
	defer cw.wg.Done()

	for {
		select {
		case msg := <-cw.send:
			_ = cw.conn.SetWriteDeadline(cw.clock.Now().Add(cw.writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				cw.markDead()
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) drain() {
	for {
		if _, _, err := cw.conn.NextReader(); err != nil {
			cw.markDead()
			return
		}
	}
}

func (cw *clientWriter) markDead() {
	cw.deadOnce.Do(func() { close(cw.dead) })
}

// alive reports whether the connection may still accept messages.
func (cw *clientWriter) alive() bool {
	select {
	case <-cw.dead:
		return false
	default:
		return true
	}
}

// enqueue queues msg without blocking. It returns false when the queue is
// full or the connection is dead.
func (cw *clientWriter) enqueue(msg []byte) bool {
	if !cw.alive() {
		return false
	}
	select {
	case cw.send <- msg:
		return true
	default:
		return false
	}
}

// stop closes the connection without a close frame.
func (cw *clientWriter) stop() {
	cw.stopOnce.Do(func() {
		close(cw.done)
		_ = cw.conn.Close()
	})
	cw.wg.Wait()
}

// stopGraceful sends a close frame with code and reason, then closes.
func (cw *clientWriter) stopGraceful(code int, reason string) {
	cw.stopOnce.Do(func() {
		close(cw.done)
		// run must exit before the close frame is written.
		cw.wg.Wait()

		msg := websocket.FormatCloseMessage(code, reason)
		_ = cw.conn.WriteControl(websocket.CloseMessage, msg, cw.clock.Now().Add(cw.writeTimeout))
		_ = cw.conn.Close()
	})
}
