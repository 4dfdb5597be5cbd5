package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	drepo "DeskStream/internal/domain/repository"
)

// ErrConnectionClosed is returned by streams read after Close.
var ErrConnectionClosed = errors.New("stream: connection closed")

// GlobalScope is the single scope-wide feed.
const GlobalScope = "GLOBAL"

type SignalKind int

const (
	SignalReady SignalKind = iota
	SignalData
	SignalFault
)

func (k SignalKind) String() string {
	switch k {
	case SignalReady:
		return "ready"
	case SignalData:
		return "data"
	case SignalFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Signal is one notification from a connection to its owner.
type Signal struct {
	Kind    SignalKind
	Payload string
	Err     error
}

// Connection owns one transport stream and pumps its messages, in order,
// onto a signal channel. It never reconnects.
type Connection struct {
	scope   string
	stream  drepo.Stream
	signals chan Signal
	cancel  context.CancelFunc
	done    chan struct{}

	releaseOnce sync.Once
	releaseErr  error
	closeOnce   sync.Once
}

// Open dials transport for scope. The first signal on a successful
// connection is always SignalReady.
func Open(ctx context.Context, transport drepo.Transport, scope string) (*Connection, error) {
	if scope == "" {
		scope = GlobalScope
	}

	s, err := transport.Dial(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", scope, err)
	}

	pctx, cancel := context.WithCancel(ctx)
	c := &Connection{
		scope:   scope,
		stream:  s,
		signals: make(chan Signal),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go c.pump(pctx)
	return c, nil
}

// Signals is closed once the connection has stopped emitting.
func (c *Connection) Signals() <-chan Signal { return c.signals }

func (c *Connection) Scope() string { return c.scope }

// Close releases the transport and waits for the pump to exit. It is safe
// to call more than once and from the goroutine reading Signals.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.release()
		<-c.done
	})
	return c.releaseErr
}

func (c *Connection) release() {
	c.releaseOnce.Do(func() {
		c.releaseErr = c.stream.Close()
	})
}

func (c *Connection) pump(ctx context.Context) {
	defer close(c.done)
	defer close(c.signals)

	if !c.emit(ctx, Signal{Kind: SignalReady}) {
		return
	}
	for {
		payload, err := c.stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.release()
			c.emit(ctx, Signal{Kind: SignalFault, Err: err})
			return
		}
		if !c.emit(ctx, Signal{Kind: SignalData, Payload: payload}) {
			return
		}
	}
}

func (c *Connection) emit(ctx context.Context, s Signal) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case c.signals <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// expand substitutes the scope into a URL or topic template.
func expand(template, scope string) string {
	return strings.ReplaceAll(template, "{scope}", scope)
}
