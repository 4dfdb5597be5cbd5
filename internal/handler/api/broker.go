package api

import (
	"context"
	"encoding/json"
	"time"

	drepo "DeskStream/internal/domain/repository"
	applogger "DeskStream/pkg/logger"
)

// Broker fans store snapshots out to push clients (SSE and WebSocket).
// Clients only ever hold the latest frame; a slow client skips frames
// instead of blocking the others.
type Broker struct {
	reader     drepo.SnapshotReader
	interval   time.Duration
	log        *applogger.Logger
	register   chan chan []byte
	unregister chan chan []byte
	done       chan struct{}
}

// NewBroker pushes at most one frame per interval.
func NewBroker(reader drepo.SnapshotReader, interval time.Duration, l *applogger.Logger) *Broker {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Broker{
		reader:     reader,
		interval:   interval,
		log:        l,
		register:   make(chan chan []byte),
		unregister: make(chan chan []byte),
		done:       make(chan struct{}),
	}
}

// Run serves clients until ctx is done, then closes every client channel.
func (b *Broker) Run(ctx context.Context) {
	notes, cancel := b.reader.Subscribe()
	defer cancel()

	clients := make(map[chan []byte]struct{})
	defer func() {
		for c := range clients {
			close(c)
		}
		close(b.done)
	}()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-b.register:
			clients[c] = struct{}{}
			if frame := b.frame(); frame != nil {
				offer(c, frame)
			}
			b.log.Debug("push client connected", applogger.Int("clients", len(clients)))
		case c := <-b.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c)
				b.log.Debug("push client disconnected", applogger.Int("clients", len(clients)))
			}
		case <-notes:
			dirty = true
		case <-ticker.C:
			if !dirty || len(clients) == 0 {
				continue
			}
			dirty = false
			frame := b.frame()
			if frame == nil {
				continue
			}
			for c := range clients {
				offer(c, frame)
			}
		}
	}
}

// Subscribe registers a client. The channel is closed when the broker stops
// or after the returned cancel is called.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	c := make(chan []byte, 1)
	select {
	case b.register <- c:
	case <-b.done:
		close(c)
		return c, func() {}
	}
	return c, func() {
		select {
		case b.unregister <- c:
		case <-b.done:
		}
	}
}

func (b *Broker) frame() []byte {
	data, err := json.Marshal(b.reader.ReadAll())
	if err != nil {
		b.log.Error("encode snapshot", applogger.Error(err))
		return nil
	}
	return data
}

// offer replaces any unread frame with msg.
func offer(c chan []byte, msg []byte) {
	select {
	case c <- msg:
		return
	default:
	}
	select {
	case <-c:
	default:
	}
	select {
	case c <- msg:
	default:
	}
}
