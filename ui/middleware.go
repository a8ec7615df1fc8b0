package ui

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware; Use calls precede every route, /static included
func (s *Server) setupMiddleware() {
	s.router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	})

	staticFS, err := fs.Sub(s.assets, "static")
	if err != nil {
		s.logger.Error("[setupMiddleware] error creating static filesystem: %v", err)
		return
	}
	s.logger.Debug("[Static] serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
}
