package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"DeskStream/internal/domain/models"
	drepo "DeskStream/internal/domain/repository"
	"DeskStream/internal/usecase"
	xhttp "DeskStream/pkg/http"
	applogger "DeskStream/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// DashboardHandler is the read-only display surface. Nothing here mutates
// the store.
type DashboardHandler struct {
	reader   drepo.SnapshotReader
	book     *usecase.PortfolioBook
	broker   *Broker
	log      *applogger.Logger
	upgrader websocket.Upgrader
}

func NewDashboardHandler(reader drepo.SnapshotReader, book *usecase.PortfolioBook, broker *Broker, l *applogger.Logger) *DashboardHandler {
	return &DashboardHandler{
		reader: reader,
		book:   book,
		broker: broker,
		log:    l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 8192,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/ws", h.WebSocket)

	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/log", h.Log)
	g.GET("/instruments", h.Instruments)
	g.GET("/instruments/:ticker", h.Instrument)
	g.GET("/metrics", h.Metrics)
	g.GET("/portfolio", h.Portfolio)
	g.GET("/feeds", h.Feeds)
	g.GET("/stream", h.Stream)
}

func (h *DashboardHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DashboardHandler) Snapshot(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reader.ReadAll())
}

// Log lists audit entries newest first.
func (h *DashboardHandler) Log(c echo.Context) error {
	req := &models.LogRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	all := h.reader.ReadAll().Log
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	rows := make([]models.AuditLogEntry, 0, req.Limit)
	for _, e := range all {
		if len(rows) == req.Limit {
			break
		}
		if ticker != "" && e.Ticker != ticker {
			continue
		}
		rows = append(rows, e)
	}
	return xhttp.ListResponse(c, rows, int64(len(all)))
}

func (h *DashboardHandler) Instruments(c echo.Context) error {
	snap := h.reader.ReadAll()
	rows := make([]models.InstrumentState, 0, len(snap.Instruments))
	for _, st := range snap.Instruments {
		rows = append(rows, st)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DashboardHandler) Instrument(c echo.Context) error {
	req := &models.InstrumentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ticker := strings.ToUpper(req.Ticker)
	st, ok := h.reader.ReadAll().Instruments[ticker]
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("instrument %s is not tracked", ticker))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *DashboardHandler) Metrics(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reader.ReadAll().Metrics)
}

type portfolioResponse struct {
	Positions []models.PositionView `json:"positions"`
	UpdatedAt *time.Time            `json:"updatedAt,omitempty"`
}

func (h *DashboardHandler) Portfolio(c echo.Context) error {
	views, at := h.book.Views()
	res := portfolioResponse{Positions: views}
	if !at.IsZero() {
		res.UpdatedAt = &at
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Feeds(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.reader.ReadAll().Feeds)
}

// Stream pushes snapshots as server-sent events.
func (h *DashboardHandler) Stream(c echo.Context) error {
	frames, cancel := h.broker.Subscribe()
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(res, "event: snapshot\ndata: %s\n\n", frame); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// WebSocket pushes snapshots as text messages. Client messages are ignored.
func (h *DashboardHandler) WebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	frames, cancel := h.broker.Subscribe()
	defer cancel()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return nil
		case frame, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return nil
			}
		}
	}
}
