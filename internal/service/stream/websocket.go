package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	drepo "DeskStream/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// WSTransport subscribes over a WebSocket; every text or binary message is
// one payload.
type WSTransport struct {
	urlTemplate  string
	pingInterval time.Duration
	dialer       *websocket.Dialer
}

func NewWSTransport(urlTemplate string, pingInterval time.Duration) *WSTransport {
	return &WSTransport{
		urlTemplate:  urlTemplate,
		pingInterval: pingInterval,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (t *WSTransport) Dial(ctx context.Context, scope string) (drepo.Stream, error) {
	url := expand(t.urlTemplate, scope)
	conn, _, err := t.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial %s: %w", url, err)
	}

	s := &wsStream{conn: conn, stop: make(chan struct{})}
	if t.pingInterval > 0 {
		// A peer silent for three ping intervals is treated as gone.
		deadline := 3 * t.pingInterval
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(deadline))
		})
		s.deadline = deadline
		go s.pingLoop(t.pingInterval)
	}
	return s, nil
}

type wsStream struct {
	conn     *websocket.Conn
	deadline time.Duration
	stop     chan struct{}
	once     sync.Once
}

func (s *wsStream) Next(ctx context.Context) (string, error) {
	_, b, err := s.conn.ReadMessage()
	if err != nil {
		select {
		case <-s.stop:
			return "", ErrConnectionClosed
		default:
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ws read: %w", err)
	}
	if s.deadline > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.deadline))
	}
	return string(b), nil
}

func (s *wsStream) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval))
		}
	}
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = s.conn.Close()
	})
	return err
}
