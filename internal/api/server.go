package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oremus-labs/webhook-receiver/internal/handlers"
	"github.com/oremus-labs/webhook-receiver/internal/openapi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultWebhookPath is the endpoint used when Options.WebhookPath is empty.
const DefaultWebhookPath = "/api/webhook"

// Options configures the HTTP server wiring.
type Options struct {
	WebhookPath  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wraps the Gin engine and associated configuration.
type Server struct {
	engine *gin.Engine
	opts   Options
}

// NewServer constructs a Server with all HTTP routes configured.
func NewServer(handler *handlers.Handler, opts Options) *Server {
	if opts.WebhookPath == "" {
		opts.WebhookPath = DefaultWebhookPath
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(gin.Recovery(), requestIDMiddleware(), metricsMiddleware(), requestLogger())
	engine.NoMethod(handler.MethodNotAllowed)

	// Health + meta
	engine.GET("/healthz", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/openapi", openAPISpec(opts.WebhookPath))

	// Webhook
	engine.POST(opts.WebhookPath, handler.ReceiveWebhook)
	engine.GET(opts.WebhookPath, handler.ListEvents)

	return &Server{engine: engine, opts: opts}
}

// Engine exposes the underlying Gin engine for advanced use (testing, etc.).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// HTTPServer builds the http.Server for addr without starting it.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}
}

// Start launches the HTTP server on the provided address. Listen failures
// other than a clean shutdown are delivered on the returned channel.
func (s *Server) Start(addr string) (*http.Server, <-chan error) {
	srv := s.HTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return srv, errCh
}

// openAPISpec serves the API document as JSON, or YAML with ?format=yaml.
func openAPISpec(webhookPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("format") == "yaml" {
			c.Data(http.StatusOK, "application/yaml", openapi.YAML(webhookPath))
			return
		}
		data, err := openapi.JSON(webhookPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	}
}
