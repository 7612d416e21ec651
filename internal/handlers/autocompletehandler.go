package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/autocomplete"
	"go.uber.org/zap"
)

// ClientIDHeader lets anonymous browsers keep one debounce stream across requests.
const ClientIDHeader = "X-Client-ID"

type AutocompleteHandler struct {
	Service *autocomplete.Service
	Log     *zap.Logger
}

func NewAutocompleteHandler(s *autocomplete.Service, log *zap.Logger) *AutocompleteHandler {
	return &AutocompleteHandler{Service: s, Log: log}
}

// clientID names the keystroke stream a request belongs to: the session token,
// else the X-Client-ID header, else the remote address.
func clientID(c *gin.Context) string {
	if token := auth.BearerToken(c.Request); token != "" {
		return "session:" + token
	}
	if id := c.GetHeader(ClientIDHeader); id != "" {
		return "client:" + id
	}
	return "ip:" + c.ClientIP()
}

// Suggest is GET /autocomplete/:kind?q=.
func (h *AutocompleteHandler) Suggest(c *gin.Context) {
	res, err := h.Service.Suggest(c.Request.Context(), clientID(c), c.Param("kind"), c.Query("q"))
	if err != nil {
		if c.Request.Context().Err() != nil {
			h.Log.Debug("autocomplete caller went away", zap.String("kind", c.Param("kind")))
			c.AbortWithStatus(statusClientClosed)
			return
		}
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
