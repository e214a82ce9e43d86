package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dataprofile/domain/core"
	"dataprofile/internal/config"
	"dataprofile/internal/log"
	"dataprofile/internal/report"
	"dataprofile/internal/session"
)

// Server hosts the create_session/submit_chunk/finalize/cancel surface
// (spec.md §6) over plain HTTP, one in-memory session per id.
type Server struct {
	router *gin.Engine

	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newServer() *Server {
	s := &Server{
		router:   gin.Default(),
		sessions: make(map[string]*session.Session),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.POST("/sessions", s.createSession)
	s.router.POST("/sessions/:id/chunks", s.submitChunk)
	s.router.POST("/sessions/:id/finalize", s.finalize)
	s.router.POST("/sessions/:id/cancel", s.cancel)
}

// createSessionRequest mirrors the subset of config.SessionConfig an HTTP
// caller may override (spec.md §4.9 init).
type createSessionRequest struct {
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	Delimiter string `json:"delimiter"`
	HasHeader string `json:"has_header"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := config.DefaultSessionConfig()
	if req.Format != "" {
		cfg.Format = config.Format(req.Format)
	}
	if req.Delimiter != "" {
		cfg.Delimiter = req.Delimiter[0]
	}
	if req.HasHeader != "" {
		cfg.HasHeader = config.HeaderMode(req.HasHeader)
	}

	sess, err := session.New(req.Filename, cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (s *Server) lookup(c *gin.Context) *session.Session {
	s.mu.Lock()
	sess, ok := s.sessions[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": core.ErrSessionNotFound.Error()})
		return nil
	}
	return sess
}

// submitChunk accepts one raw-bytes chunk of the uploaded file per call
// (the host is expected to split a large multipart upload into sequential
// chunk requests); ?eof=true marks the final chunk.
func (s *Server) submitChunk(c *gin.Context) {
	sess := s.lookup(c)
	if sess == nil {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	atEOF := c.Query("eof") == "true"

	progress, err := sess.ProcessChunk(body, atEOF)
	if err != nil && core.IsFatal(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "progress_percent": progress})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress_percent": progress})
}

func (s *Server) finalize(c *gin.Context) {
	sess := s.lookup(c)
	if sess == nil {
		return
	}

	result, err := sess.Finalize()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report.BuildJSONReport(result))
}

func (s *Server) cancel(c *gin.Context) {
	sess := s.lookup(c)
	if sess == nil {
		return
	}
	sess.Cancel()
	c.Status(http.StatusNoContent)
}

func main() {
	addr := ":8080"
	if v := os.Getenv("PROFILEAPI_ADDR"); v != "" {
		addr = v
	}

	log.Default.Info("starting profileapi on %s", addr)
	if err := newServer().router.Run(addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
