package server

import (
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/quicklaunch/internal/metrics"
)

// StatusFunc reports the launcher's current state as a JSON-encodable value.
type StatusFunc func() any

// Router provides embeddable HTTP handlers for observing a running launcher.
// Endpoints:
//
//	GET {basePath}/metrics   Prometheus exposition
//	GET {basePath}/status    launcher state as JSON (404 when no StatusFunc is set)
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	basePath string
	status   StatusFunc
}

// NewRouter constructs a new Router with configurable basePath.
func NewRouter(basePath string, status StatusFunc) *Router {
	return &Router{basePath: cleanBase(basePath), status: status}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	// keep gin's debug route dump off the launcher's console
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	group.GET("/status", r.handleStatus)
	return g
}

// NewServer binds addr and serves the router in a background goroutine.
// Binding happens before returning so an occupied port is reported to the
// caller. The returned server's Addr holds the bound address; Close stops it.
func NewServer(addr, basePath string, status StatusFunc) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	r := NewRouter(basePath, status)
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.Serve(ln) }()
	return server, nil
}

func (r *Router) handleStatus(c *gin.Context) {
	if r.status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "status not available"})
		return
	}
	c.JSON(http.StatusOK, r.status())
}

// cleanBase normalizes a mount prefix to "" or "/a/b".
func cleanBase(bp string) string {
	bp = strings.Trim(strings.TrimSpace(bp), "/")
	if bp == "" {
		return ""
	}
	return path.Clean("/" + bp)
}
