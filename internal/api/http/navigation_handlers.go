package http

import (
	"net/http"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/interceptor"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/scheme"
	"github.com/gin-gonic/gin"
)

// NavigationEvent handles a tab navigation reported by the browser shell.
// The reply carries the launcher URL the tab must be moved to.
func (h *Handlers) NavigationEvent(c *gin.Context) {
	var ev interceptor.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.interceptor.Handle(c.Request.Context(), ev)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Anything else out of Handle is a malformed scheme URL.
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": launcher.StatusMessage(err), "tabId": ev.TabID})
		return
	}

	if !d.Redirected {
		c.JSON(http.StatusOK, gin.H{"ignored": true, "tabId": d.TabID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": d.LauncherURL, "tabId": d.TabID})
}

// NavigationOpen opens a function in a new tab with autoload on.
func (h *Handlers) NavigationOpen(c *gin.Context) {
	var req scheme.OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.interceptor.Open(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": launcher.StatusMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": d.LauncherURL, "tabId": d.TabID})
}
