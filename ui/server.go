package ui

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesdash/internal"
	"salesdash/internal/container"
)

// Server represents the web server for the sales dashboard
type Server struct {
	router    *gin.Engine
	container *container.Container
	logger    *internal.Logger
	templates *template.Template
	assets    fs.FS
	footer    template.HTML
	http      *http.Server
}

// NewServer creates a new web server instance. assets is rooted at the ui
// directory and must hold templates/ and static/.
func NewServer(c *container.Container, assets fs.FS) *Server {
	gin.SetMode(ginMode(c.Config.Server.GinMode))

	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}

	return &Server{
		router:    router,
		container: c,
		logger:    c.Logger,
		assets:    assets,
		footer:    renderMarkdown(footerMarkdown),
		http:      &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
	}
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

// Initialize parses templates and registers routes
func (s *Server) Initialize() error {
	templatesFS, err := fs.Sub(s.assets, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found")
	}
	s.logger.Debug("[TemplateInit] found %d template files: %v", len(files), files)

	s.templates, err = template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	// Dashboard pages, one per variant
	s.router.GET("/v/:variant", s.handleDashboard)
	s.router.POST("/v/:variant/predict", s.handlePredict)
	s.router.GET("/charts/:variant/:chart", s.handleChart)

	// JSON API
	s.router.Any("/api/v1/*path", gin.WrapH(http.StripPrefix("/api/v1", newAPI(s.container).router)))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server and blocks until it stops
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	s.logger.Info("[Server] starting sales dashboard on http://%s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
