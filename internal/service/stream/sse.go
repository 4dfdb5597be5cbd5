package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	drepo "DeskStream/internal/domain/repository"

	"github.com/go-resty/resty/v2"
)

const maxEventSize = 1 << 20

// SSETransport subscribes to a text/event-stream endpoint. The resty client
// must not carry an overall timeout; the stream stays open indefinitely.
type SSETransport struct {
	client      *resty.Client
	urlTemplate string
}

func NewSSETransport(client *resty.Client, urlTemplate string) *SSETransport {
	return &SSETransport{client: client, urlTemplate: urlTemplate}
}

// Dial issues the GET and returns once response headers arrive.
func (t *SSETransport) Dial(ctx context.Context, scope string) (drepo.Stream, error) {
	url := expand(t.urlTemplate, scope)
	resp, err := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Cache-Control", "no-cache").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("sse dial %s: %w", url, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		body.Close()
		return nil, fmt.Errorf("sse dial %s: unexpected status %d", url, resp.StatusCode())
	}
	return newSSEStream(body), nil
}

type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	once    sync.Once
	closed  chan struct{}
}

func newSSEStream(body io.ReadCloser) *sseStream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &sseStream{body: body, scanner: sc, closed: make(chan struct{})}
}

// Next returns the data of the next unnamed (or "message") event. Multiple
// data lines are joined with "\n"; comments, id and retry fields are skipped,
// and events with any other name are dropped whole. A blocked read returns
// once Close is called.
func (s *sseStream) Next(ctx context.Context) (string, error) {
	var (
		data    []string
		hasData bool
		event   string
	)
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			if hasData && (event == "" || event == "message") {
				return strings.Join(data, "\n"), nil
			}
			data, hasData, event = data[:0], false, ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			event = value
		}
	}

	select {
	case <-s.closed:
		return "", ErrConnectionClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("sse read: %w", err)
	}
	return "", fmt.Errorf("sse read: %w", io.EOF)
}

func (s *sseStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.body.Close()
	})
	return err
}
