package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
	"go.uber.org/zap"
)

type ChannelState int

const (
	StateDisconnected ChannelState = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultBaseDelay   = time.Second
	maxConnectAttempts = 5
)

// Channel maintains one logical subscription to a room's event stream and
// delivers events to a single handler in arrival order. It reconnects on
// connection loss with a linear backoff (baseDelay * attemptNumber) and goes
// silently terminal after maxConnectAttempts consecutive failures: the only
// trace past the cap is a log line, never an error to the caller.
type Channel struct {
	roomID    domain.RoomID
	dialer    ports.RealtimeDialer
	handler   func(domain.Event)
	logger    *zap.Logger
	clock     ports.Clock
	baseDelay time.Duration

	mu       sync.Mutex
	state    ChannelState
	attempts int
	conn     ports.RealtimeConn
	retry    ports.Timer
}

// NewChannel wires a channel for one room. A nil clock falls back to the
// system clock; a nil logger is replaced with a no-op one.
func NewChannel(roomID domain.RoomID, dialer ports.RealtimeDialer, handler func(domain.Event), logger *zap.Logger, clock ports.Clock) *Channel {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		roomID:    roomID,
		dialer:    dialer,
		handler:   handler,
		logger:    logger,
		clock:     clock,
		baseDelay: defaultBaseDelay,
		state:     StateDisconnected,
	}
}

func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the subscription. It is a no-op unless the channel is in its
// initial disconnected state.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateDisconnected || c.retry != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.dial(ctx)
}

func (c *Channel) dial(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.retry = nil
	c.mu.Unlock()

	conn, err := c.dialer.Dial(ctx, c.roomID)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.logger.Warn("realtime connect failed",
			zap.String("room", string(c.roomID)),
			zap.Error(err))
		c.scheduleReconnect(ctx)
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.mu.Unlock()

	c.logger.Info("realtime connected", zap.String("room", string(c.roomID)))
	go c.readLoop(ctx, conn)
}

// readLoop delivers events sequentially so the handler observes them in
// exactly the order the transport received them.
func (c *Channel) readLoop(ctx context.Context, conn ports.RealtimeConn) {
	for {
		event, err := conn.Receive()
		if err != nil {
			c.mu.Lock()
			if c.state == StateClosed || c.conn != conn {
				c.mu.Unlock()
				return
			}
			c.state = StateDisconnected
			c.conn = nil
			c.mu.Unlock()

			c.logger.Warn("realtime connection lost",
				zap.String("room", string(c.roomID)),
				zap.Error(err))
			c.scheduleReconnect(ctx)
			return
		}
		c.handler(event)
	}
}

func (c *Channel) scheduleReconnect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisconnected {
		return
	}
	if c.attempts >= maxConnectAttempts {
		c.logger.Error("max reconnection attempts reached, giving up",
			zap.String("room", string(c.roomID)),
			zap.Int("attempts", c.attempts))
		return
	}
	c.attempts++
	delay := c.baseDelay * time.Duration(c.attempts)
	c.logger.Info("scheduling reconnect",
		zap.String("room", string(c.roomID)),
		zap.Int("attempt", c.attempts),
		zap.Duration("delay", delay))
	c.retry = c.clock.AfterFunc(delay, func() { c.dial(ctx) })
}

// Disconnect moves the channel to its terminal closed state from any state,
// releases the transport and cancels any pending reconnect timer so nothing
// leaks into a torn-down session. Safe to call more than once.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.logger.Info("realtime disconnected", zap.String("room", string(c.roomID)))
}
