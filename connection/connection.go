// Package connection implements the TCP connection manager of §4.E: the
// connect/reconnect loop with exponential backoff, the paced outbound
// queue, inbound buffer reassembly, and pause/resume flow control.
//
// The spec models this as a single-threaded cooperative event loop. Idiomatic
// Go maps that onto one goroutine (readLoop) that owns the socket and the
// inbound buffer, plus a mutex-guarded outbound queue any goroutine may
// enqueue onto — the same division the corpus's proxy/mysql and
// proxy/postgres conn types use for their own bidirectional relay
// (relayClientToUpstream / relayUpstreamToClient each own one direction;
// shared state is mutex-guarded).
package connection

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dynetlink/dynet"
	"github.com/dynetlink/dynet/metrics"
)

// State is the connection's lifecycle state (§4.E).
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

const (
	minSendInterval = 200 * time.Millisecond
	connectTimeout  = 30 * time.Second
	pausedRetry     = time.Second
)

type queued struct {
	pkt       dynet.Packet
	shouldRun func() bool
}

// Connection owns one TCP socket, one inbound byte buffer, and one
// outbound packet FIFO, exactly as described in §4.E.
type Connection struct {
	addr   string
	active dynet.ActiveMode
	logger *log.Logger
	reg    *metrics.Registry

	onEvent        func(dynet.Event)
	onConnected    func()
	onDisconnected func()

	mu       sync.Mutex
	state    State
	conn     net.Conn
	backoff  time.Duration
	paused   bool
	sending  bool
	lastSend time.Time
	queue    []queued
}

// New builds a Connection for host:port, gated by active (the mode that
// controls whether REQUEST_CHANNEL_LEVEL/REQUEST_PRESET packets may ever
// be transmitted, §4.E).
func New(addr string, active dynet.ActiveMode, logger *log.Logger, reg *metrics.Registry) *Connection {
	return &Connection{addr: addr, active: active, logger: logger, reg: reg}
}

// OnEvent registers the callback invoked for every decoded inbound event.
func (c *Connection) OnEvent(fn func(dynet.Event)) { c.onEvent = fn }

// OnConnected registers the callback invoked after a successful connect.
func (c *Connection) OnConnected(fn func()) { c.onConnected = fn }

// OnDisconnected registers the callback invoked when the socket is lost.
func (c *Connection) OnDisconnected(fn func()) { c.onDisconnected = fn }

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run drives the connect/reconnect loop until ctx is cancelled. It blocks;
// callers typically run it in its own goroutine.
func (c *Connection) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.setState(StateConnecting)
		conn, err := net.DialTimeout("tcp", c.addr, connectTimeout)
		if err != nil {
			c.setState(StateFailed)
			if c.reg != nil {
				c.reg.ConnectFailures.Inc()
			}
			connErr := &dynet.ConnectError{Addr: c.addr, Err: err}
			if c.logger != nil {
				c.logger.Warn("connect failed", "err", connErr)
			}
			delay := c.armBackoff()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.backoff = 0
		c.state = StateConnected
		c.mu.Unlock()

		if c.reg != nil {
			c.reg.Reconnects.Inc()
			c.reg.BackoffSeconds.Set(0)
		}
		if c.onConnected != nil {
			c.onConnected()
		}
		c.trySend()

		readErr := c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.state = StateDisconnected
		c.mu.Unlock()

		if c.onDisconnected != nil {
			c.onDisconnected()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.logger != nil {
			c.logger.Warn("connection lost", "addr", c.addr, "err", readErr)
		}
	}
}

func (c *Connection) armBackoff() time.Duration {
	c.mu.Lock()
	c.backoff = nextBackoff(c.backoff)
	delay := c.backoff
	c.mu.Unlock()
	if c.reg != nil {
		c.reg.BackoffSeconds.Set(delay.Seconds())
	}
	return delay
}

func (c *Connection) readLoop(ctx context.Context, conn net.Conn) error {
	var buf []byte
	tmp := make([]byte, 4096)
	for {
		n, err := conn.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			frames, consumed, resyncs := reassemble(buf)
			buf = append(buf[:0:0], buf[consumed:]...)
			if resyncs > 0 && c.reg != nil {
				c.reg.Resyncs.Add(float64(resyncs))
			}
			for _, fr := range frames {
				c.dispatchFrame(fr)
			}
		}
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

func (c *Connection) dispatchFrame(fr frame) {
	switch fr.kind {
	case frameDebug:
		if c.logger != nil {
			c.logger.Debug("debug frame", "debug_msg", fr.debug)
		}
	case frameEvent:
		if c.reg != nil {
			c.reg.PacketsRead.Inc()
		}
		ev, ok := dynet.DecodeEvent(fr.pkt)
		if ok && c.onEvent != nil {
			c.onEvent(ev)
		}
	}
}

// Pause implements the transport pause_writing hook (§4.E): the sender
// loop reschedules itself until Resume is called.
func (c *Connection) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume implements resume_writing and kicks the sender loop.
func (c *Connection) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	c.trySend()
}

// Enqueue implements model.Transport: queues pkt for paced transmission,
// guarded at send time by shouldRun. REQUEST_CHANNEL_LEVEL and
// REQUEST_PRESET packets may only be transmitted while active is init or
// on (§4.E); enqueuing one while off is a contract violation the model
// must not commit, so it is logged and dropped rather than queued.
func (c *Connection) Enqueue(pkt dynet.Packet, shouldRun func() bool) {
	if isQueryOpcode(pkt.Command) && c.active == dynet.ActiveOff {
		if c.logger != nil {
			c.logger.Error("contract violation: query packet enqueued while active=off", "command", pkt.Command)
		}
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, queued{pkt: pkt, shouldRun: shouldRun})
	c.mu.Unlock()
	c.trySend()
}

func isQueryOpcode(cmd byte) bool {
	op := dynet.Opcode(cmd)
	return op == dynet.OpRequestChannelLevel || op == dynet.OpRequestPreset
}

// trySend drives the paced outbound queue (§4.E): if the transport is not
// ready it is a no-op (Run's post-connect flush retries it); if paused or
// already sending it reschedules in ~1s; otherwise it computes the
// remaining inter-packet spacing and either sends now or reschedules after
// the remainder.
func (c *Connection) trySend() {
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return
	}
	if c.paused || c.sending {
		c.mu.Unlock()
		time.AfterFunc(pausedRetry, c.trySend)
		return
	}
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return
	}
	wait := minSendInterval - time.Since(c.lastSend)
	if wait > 0 {
		c.mu.Unlock()
		time.AfterFunc(wait, c.trySend)
		return
	}
	c.sending = true
	head := c.queue[0]
	conn := c.conn
	c.mu.Unlock()

	defer c.finishSend()

	if head.shouldRun != nil && !head.shouldRun() {
		c.popHead()
		return
	}

	wire := head.pkt.Encode()
	_, err := conn.Write(wire[:])
	c.mu.Lock()
	c.lastSend = time.Now()
	c.mu.Unlock()
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("write failed", "err", err)
		}
	} else if c.reg != nil {
		c.reg.PacketsSent.Inc()
	}
	c.popHead()
}

func (c *Connection) finishSend() {
	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()
}

func (c *Connection) popHead() {
	c.mu.Lock()
	if len(c.queue) > 0 {
		c.queue = c.queue[1:]
	}
	more := len(c.queue) > 0
	c.mu.Unlock()
	if more {
		time.AfterFunc(minSendInterval, c.trySend)
	}
}
