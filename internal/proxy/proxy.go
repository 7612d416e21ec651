// Package proxy forwards client calls to the external career API so the API key
// never reaches the browser.
package proxy

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stripped request headers: the client's own credentials are meaningless upstream
var hopHeaders = []string{"Authorization", "Cookie"}

type Options struct {
	Target       *url.URL
	APIKey       string
	APIKeyHeader string
	// Param is the gin wildcard holding the forwarded path.
	Param string
}

// New returns a gin handler forwarding /<prefix>/*path to Target/path.
func New(opts Options, log *zap.Logger) gin.HandlerFunc {
	if opts.Target == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "external API not configured"})
		}
	}
	if opts.Param == "" {
		opts.Param = "path"
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(opts.Target)
			r.SetXForwarded()
			for _, h := range hopHeaders {
				r.Out.Header.Del(h)
			}
			if opts.APIKey != "" && opts.APIKeyHeader != "" {
				r.Out.Header.Set(opts.APIKeyHeader, opts.APIKey)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			status := http.StatusBadGateway
			if errors.Is(err, r.Context().Err()) {
				// client went away
				status = 499
			}
			log.Warn("proxy request failed",
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
		},
	}

	return func(c *gin.Context) {
		req := c.Request.Clone(c.Request.Context())
		req.URL.Path = "/" + strings.TrimPrefix(c.Param(opts.Param), "/")
		req.URL.RawPath = ""
		rp.ServeHTTP(c.Writer, req)
	}
}
