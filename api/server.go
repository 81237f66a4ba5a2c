// Package api exposes the backtest engine over HTTP.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stratlab/backtest"
)

// Server is the HTTP front of the engine.
type Server struct {
	engine *gin.Engine
	server *http.Server
	runner *backtest.Runner
}

func NewServer(runner *backtest.Runner, port int) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine: engine,
		runner: runner,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	handler := NewHandler(s.runner)

	api := s.engine.Group("/api")
	{
		api.POST("/backtest", handler.RunBacktest)
		api.POST("/scan", handler.RunScan)
		api.GET("/strategies", handler.GetStrategies)
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start blocks on ListenAndServe until Shutdown.
func (s *Server) Start() error {
	log.Printf("[API] listening on http://localhost%s\n", s.server.Addr)
	log.Println("[API] endpoints:")
	log.Println("  POST /api/backtest   - run a backtest over symbols")
	log.Println("  POST /api/scan       - scan symbols for current signals")
	log.Println("  GET  /api/strategies - list strategy variants")
	log.Println("  GET  /health         - health check")
	log.Println("  GET  /metrics        - prometheus metrics")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Printf("[API] %s %s %d %v\n", c.Request.Method, path, status, latency)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
