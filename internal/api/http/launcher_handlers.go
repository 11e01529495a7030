package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/invoker"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/launcher"
	"github.com/GriffinCanCode/RivalWidget/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

//go:embed templates/launcher.html
var templates embed.FS

var launcherTemplate = template.Must(template.ParseFS(templates, "templates/launcher.html"))

// StreamPath is the websocket route the launcher page connects to.
const StreamPath = "/stream"

// ClockLayout formats the launcher page clock.
const ClockLayout = "15:04:05"

type launcherView struct {
	Path       string
	StreamPath string
	PageID     string
	Form       launcher.Form
	BaseURLs   []string
	Methods    []string
	Autoload   bool
	Clock      string
	Status     string
	Warning    string
}

// LauncherPage renders the launcher form pre-populated from remembered
// config and query parameters.
func (h *Handlers) LauncherPage(c *gin.Context) {
	form, autoload, err := h.launcher.Defaults(c.Request.URL.Query())
	view := h.view(form, autoload)
	status := http.StatusOK
	if err != nil {
		h.logger.Warn("Ignoring launcher parameters", zap.Error(err))
		view.Status = launcher.StatusMessage(err)
		view.Autoload = false
		status = statusFor(err)
	}
	h.render(c, status, view)
}

// LauncherSubmit runs a submission. HTML form posts get the function's
// document in place of the launcher page; JSON posts get a JSON result.
func (h *Handlers) LauncherSubmit(c *gin.Context) {
	var form launcher.Form
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, form, err)
		return
	}
	form.PageScheme = requestScheme(c.Request)

	res, err := h.launcher.Submit(c.Request.Context(), form)
	if err != nil {
		h.fail(c, form, err)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, res)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(res.HTML))
}

func (h *Handlers) fail(c *gin.Context, form launcher.Form, err error) {
	status := statusFor(err)
	msg := launcher.StatusMessage(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Launch failed", zap.Error(err))
	}

	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	view := h.view(form, false)
	view.Status = msg
	if form.PageID != "" {
		view.PageID = form.PageID
	}
	var submitErr *launcher.SubmitError
	if errors.As(err, &submitErr) && submitErr.MixedContent {
		view.Warning = launcher.MixedContentWarning
	}
	h.render(c, status, view)
}

func (h *Handlers) view(form launcher.Form, autoload bool) launcherView {
	if form.HTTPMethod == "" {
		form.HTTPMethod = invoker.DefaultMethod
	}
	if form.EventData == "" {
		form.EventData = "{}"
	}
	pageID := id.NewPageID().String()

	return launcherView{
		Path:       h.launcherPath,
		StreamPath: StreamPath + "?" + url.Values{"pageId": {pageID}}.Encode(),
		PageID:     pageID,
		Form:       form,
		BaseURLs:   h.baseURLs(form.BaseURL),
		Methods:    invoker.Methods,
		Autoload:   autoload,
		Clock:      time.Now().Format(ClockLayout),
	}
}

// baseURLs lists the selectable endpoints: the catalog default, rewrite
// sources and the current value.
func (h *Handlers) baseURLs(current string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	add(current)
	add(h.endpoints.Default)
	for _, rw := range h.endpoints.Rewrites {
		add(rw.From)
	}
	return out
}

func (h *Handlers) render(c *gin.Context, status int, view launcherView) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := launcherTemplate.Execute(c.Writer, view); err != nil {
		h.logger.Error("Failed to render launcher page", zap.Error(err))
	}
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEJSON ||
		strings.Contains(c.GetHeader("Accept"), binding.MIMEJSON)
}

// requestScheme is the scheme the client used, honouring a proxy's
// X-Forwarded-Proto.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
