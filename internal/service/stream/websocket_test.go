package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSTransportDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/AAPL", r.URL.Path)
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"ticker":"AAPL","signal":"BULLISH"}`))
		_ = c.WriteMessage(websocket.TextMessage, []byte("[DONE]"))
		// Hold the socket open until the client goes away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/{scope}"
	conn, err := Open(context.Background(), NewWSTransport(url, 50*time.Millisecond), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, SignalReady, recv(t, conn.Signals()).Kind)
	assert.Equal(t, `{"ticker":"AAPL","signal":"BULLISH"}`, recv(t, conn.Signals()).Payload)
	assert.Equal(t, "[DONE]", recv(t, conn.Signals()).Payload)

	require.NoError(t, conn.Close())
	_, ok := <-conn.Signals()
	assert.False(t, ok)
}

func TestWSTransportDialError(t *testing.T) {
	_, err := Open(context.Background(), NewWSTransport("ws://127.0.0.1:1/{scope}", 0), GlobalScope)
	require.Error(t, err)
}
