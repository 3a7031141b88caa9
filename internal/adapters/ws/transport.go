package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Dialer opens websocket subscriptions against the backend's realtime
// endpoint at {base}/realtime?room={id}.
type Dialer struct {
	baseURL  string
	wsDialer *websocket.Dialer
	logger   *zap.Logger
}

var _ ports.RealtimeDialer = (*Dialer)(nil)

// NewDialer accepts the same http(s) base URL the REST client uses and
// rewrites the scheme when dialing.
func NewDialer(baseURL string, logger *zap.Logger) *Dialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialer{
		baseURL:  baseURL,
		wsDialer: websocket.DefaultDialer,
		logger:   logger,
	}
}

func (d *Dialer) Dial(ctx context.Context, roomID domain.RoomID) (ports.RealtimeConn, error) {
	endpoint, err := d.endpoint(roomID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := d.wsDialer.DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial realtime endpoint: %w", err)
	}
	return &Conn{conn: conn, logger: d.logger}, nil
}

func (d *Dialer) endpoint(roomID domain.RoomID) (string, error) {
	u, err := url.Parse(d.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse realtime base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported realtime scheme %q", u.Scheme)
	}
	u.Path = path.Join(u.Path, "realtime")
	query := u.Query()
	query.Set("room", string(roomID))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Conn adapts one websocket connection to the realtime port.
type Conn struct {
	conn   *websocket.Conn
	logger *zap.Logger
}

var _ ports.RealtimeConn = (*Conn)(nil)

// Receive returns the next decodable {action, todo} frame. Malformed frames
// are logged and skipped rather than tearing the connection down.
func (c *Conn) Receive() (domain.Event, error) {
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return domain.Event{}, fmt.Errorf("read realtime frame: %w", err)
		}
		var event domain.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			c.logger.Warn("failed to parse realtime message", zap.Error(err))
			continue
		}
		return event, nil
	}
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
