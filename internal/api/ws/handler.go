package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClockInterval is how often the launcher clock ticks.
const ClockInterval = time.Second

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Launcher pages may be opened from extension origins
	},
}

// Message is a client request.
type Message struct {
	Type string        `json:"type"`
	Form launcher.Form `json:"form"`
}

// Handler manages WebSocket connections
type Handler struct {
	launcher *launcher.Launcher
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	clock    time.Duration
}

// NewHandler creates a new WebSocket handler
func NewHandler(l *launcher.Launcher, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		launcher: l,
		metrics:  metrics,
		logger:   logging.OrNop(logger),
		clock:    ClockInterval,
	}
}

// conn serializes writes; gorilla connections allow one writer at a time.
type conn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(msgType string, data gin.H) error {
	data["type"] = msgType
	data["timestamp"] = time.Now().Unix()

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteJSON(data); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", msgType)
	}
	return nil
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	pageID, err := id.ParsePageID(c.Query("pageId"))
	if err != nil {
		pageID = id.NewPageID()
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}

	out := &conn{ws: ws, metrics: h.metrics}
	log := h.logger.With(zap.String("page_id", pageID.String()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		h.launcher.ClosePage(pageID)
	}()

	page := h.launcher.Page(pageID)
	page.Every("clock", h.clock, func(now time.Time) {
		_ = out.send("clock", gin.H{"time": now.Format("15:04:05")})
	})

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "launch":
			form := msg.Form
			form.PageID = pageID.String()
			form.PageScheme = scheme
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.launch(ctx, out, form)
			}()
		case "ping":
			_ = out.send("pong", gin.H{})
		default:
			_ = out.send("error", gin.H{"message": "unknown message type"})
		}
	}
}

func (h *Handler) launch(ctx context.Context, out *conn, form launcher.Form) {
	res, err := h.launcher.SubmitWithProgress(ctx, form, func(stage int) {
		_ = out.send("progress", gin.H{"stage": stage})
	})
	if errors.Is(err, launcher.ErrSuperseded) {
		return
	}
	if err != nil {
		_ = out.send("error", gin.H{"message": launcher.StatusMessage(err)})
		return
	}

	if res.Warning != "" {
		_ = out.send("warning", gin.H{"message": res.Warning})
	}
	_ = out.send("page", gin.H{
		"html":          res.HTML,
		"shape":         res.Shape,
		"invocation_id": res.InvocationID,
	})
}
