package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxEventBytes bounds a widget invoke body.
const maxEventBytes = 1 << 20

// WidgetSession returns the callback surface values for the current session.
func (h *Handlers) WidgetSession(c *gin.Context) {
	s, err := h.surface.Snapshot()
	if err != nil {
		h.logger.Error("Failed to read widget session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

// WidgetInvoke POSTs the request body as the event with the session
// credentials and relays the reply body with its content type.
func (h *Handlers) WidgetInvoke(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event json.RawMessage
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		if !sonic.Valid(body) {
			c.JSON(http.StatusBadRequest, gin.H{"error": launcher.StatusMessage(launcher.ErrInvalidJSON)})
			return
		}
		event = json.RawMessage(trimmed)
	}

	resp, err := h.surface.Invoke(c.Request.Context(), event)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(resp.Body).String()
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}
