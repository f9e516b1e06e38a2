// Package api wires the HTTP and WebSocket surface onto the gateway,
// catalog, and room hub.
package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"coderoom/internal/engine"
	"coderoom/internal/room"
)

type API struct {
	gateway      *engine.Gateway
	catalog      engine.Catalog
	hub          *room.Hub
	maxCodeChars int
	log          logrus.FieldLogger
}

func New(
	gateway *engine.Gateway,
	catalog engine.Catalog,
	hub *room.Hub,
	maxCodeChars int,
	log logrus.FieldLogger,
) *API {
	return &API{
		gateway:      gateway,
		catalog:      catalog,
		hub:          hub,
		maxCodeChars: maxCodeChars,
		log:          log,
	}
}

func (a *API) Register(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "coderoom backend OK")
	})

	api := r.Group("/api")
	api.GET("/runtimes", a.runtimes)
	api.POST("/execute", a.execute)
	api.POST("/execute-stream", a.executeStream)

	r.GET("/ws", a.websocket)
}

func (a *API) runtimes(c *gin.Context) {
	force := c.Query("force") == "1" || c.Query("force") == "true"

	runtimes, err := a.catalog.Runtimes(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runtimes)
}

// validate rejects a run request before any upstream work. A zero
// status means the request is acceptable.
func (a *API) validate(req engine.ExecuteRequest) (int, string) {
	if strings.TrimSpace(req.Language) == "" {
		return http.StatusBadRequest, "language required"
	}
	if strings.TrimSpace(req.Code) == "" {
		return http.StatusBadRequest, "code required"
	}
	if utf8.RuneCountInString(req.Code) > a.maxCodeChars {
		return http.StatusRequestEntityTooLarge, "code too large"
	}
	return 0, ""
}

func (a *API) execute(c *gin.Context) {
	var req engine.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if status, reason := a.validate(req); status != 0 {
		c.JSON(status, gin.H{"error": reason})
		return
	}

	result, err := a.gateway.Run(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) executeStream(c *gin.Context) {
	var req engine.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if status, reason := a.validate(req); status != 0 {
		c.JSON(status, gin.H{"error": reason})
		return
	}

	stream := newEventStream(c.Writer)
	defer stream.Close()

	result, err := a.gateway.Run(c.Request.Context(), req)
	if err != nil {
		// Headers not committed yet: a plain error response is still
		// possible. Mid-stream this would have to become a frame.
		if !stream.Started() {
			a.fail(c, err)
			return
		}
		_ = stream.Emit(map[string]any{"type": "error", "content": err.Error()})
		return
	}

	if err := relayResult(stream, result); err != nil {
		a.log.WithError(err).Debug("stream delivery aborted")
	}
}

// fail maps gateway errors onto status codes: an unsupported language
// is the client's mistake, everything else is the upstream's.
func (a *API) fail(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrUnsupportedLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
