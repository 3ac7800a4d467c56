// Package stubserver is a local development backend that speaks the same
// POST /chat contract as the real assistant service.
package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"assistchat/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// Options configures the stub server.
type Options struct {
	Addr      string
	RateLimit rate.Limit // per client; 0 disables limiting
	Burst     int
	Reply     ReplyFunc     // DefaultReply when nil
	Latency   time.Duration // artificial delay before each reply
}

type chatRequest struct {
	Message *string `json:"message" binding:"required"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	opts    Options
	engine  *gin.Engine
	limiter *RateLimiter
	srv     *http.Server
}

// New builds a stub server. It does not start listening.
func New(opts Options) *Server {
	if opts.Reply == nil {
		opts.Reply = DefaultReply
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts: opts,
		limiter: NewRateLimiter(RateLimiterOptions{
			Limit: opts.RateLimit,
			Burst: opts.Burst,
		}),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog())
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/chat", s.limiter.Middleware(), s.handleChat)
	s.engine = engine

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logging.Stub("stub backend listening on %s", ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stub server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			logging.StubError("shutdown: %v", err)
			return fmt.Errorf("failed to shut down stub server: %w", err)
		}
		logging.Stub("stub backend stopped")
		return nil
	})
	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"clients":   s.limiter.Clients(),
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"message\": string}"})
		return
	}
	if strings.TrimSpace(*req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-c.Request.Context().Done():
			return
		}
	}

	c.JSON(http.StatusOK, chatResponse{Response: s.opts.Reply(*req.Message)})
}

// requestID propagates or assigns X-Request-ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.WithRequestID(logging.CategoryStub, c.GetString("request_id")).
			Info("%s %s -> %d in %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
