package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "DeskStream/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stream/GLOBAL" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, f := range frames {
			fmt.Fprint(w, f)
			flusher.Flush()
		}
		<-r.Context().Done()
	}))
}

func TestSSETransportParsesEvents(t *testing.T) {
	srv := sseServer(t,
		": keep-alive\n\n",
		"id: 7\ndata: {\"ticker\":\"NVDA\",\"score\":71}\n\n",
		"data: {\"agent\":\"Burry\",\n",
		"data: \"content\":\"short\"}\n\n",
		"retry: 1000\r\ndata:[DONE]\r\n\r\n",
	)
	defer srv.Close()

	tr := NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), srv.URL+"/stream/{scope}")
	conn, err := Open(context.Background(), tr, GlobalScope)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, SignalReady, recv(t, conn.Signals()).Kind)
	assert.Equal(t, `{"ticker":"NVDA","score":71}`, recv(t, conn.Signals()).Payload)
	assert.Equal(t, "{\"agent\":\"Burry\",\n\"content\":\"short\"}", recv(t, conn.Signals()).Payload)
	assert.Equal(t, "[DONE]", recv(t, conn.Signals()).Payload)
}

func TestSSESkipsNamedEvents(t *testing.T) {
	srv := sseServer(t,
		"event: heartbeat\ndata: {}\n\n",
		"event: status\ndata: {\"ticker\":\"NOPE\"}\n\n",
		"event: message\ndata: {\"ticker\":\"AMD\"}\n\n",
		"data: {\"ticker\":\"ARM\"}\n\n",
	)
	defer srv.Close()

	tr := NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), srv.URL+"/stream/{scope}")
	conn, err := Open(context.Background(), tr, GlobalScope)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, SignalReady, recv(t, conn.Signals()).Kind)
	assert.Equal(t, `{"ticker":"AMD"}`, recv(t, conn.Signals()).Payload)
	assert.Equal(t, `{"ticker":"ARM"}`, recv(t, conn.Signals()).Payload)
}

func TestSSETransportRejectsBadStatus(t *testing.T) {
	srv := sseServer(t)
	defer srv.Close()

	tr := NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), srv.URL+"/missing/{scope}")
	_, err := Open(context.Background(), tr, GlobalScope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestSSEServerHangupIsAFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {}\n\n")
	}))
	defer srv.Close()

	tr := NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), srv.URL)
	conn, err := Open(context.Background(), tr, GlobalScope)
	require.NoError(t, err)
	defer conn.Close()

	recv(t, conn.Signals())
	assert.Equal(t, "{}", recv(t, conn.Signals()).Payload)
	assert.Equal(t, SignalFault, recv(t, conn.Signals()).Kind)
}

func TestSSECloseUnblocksRead(t *testing.T) {
	srv := sseServer(t)
	defer srv.Close()

	tr := NewSSETransport(xhttp.NewClient(xhttp.WithTimeout(0)), srv.URL+"/stream/{scope}")
	conn, err := Open(context.Background(), tr, GlobalScope)
	require.NoError(t, err)
	recv(t, conn.Signals())

	done := make(chan struct{})
	go func() {
		conn.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not unblock the pending read")
	}
}
