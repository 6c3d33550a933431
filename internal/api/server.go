package api

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leonmuri/Progol-aleatorio2/internal/draw"
	"github.com/leonmuri/Progol-aleatorio2/internal/export"
	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/pipeline"
	"github.com/leonmuri/Progol-aleatorio2/internal/storage"
)

// Server wires sessions, the ticket store and the HTTP routes.
type Server struct {
	store         storage.Store
	sessions      *sessions
	secureCookies bool
	now           func() time.Time
	randomPicks   func(n int) []draw.Pick
}

// Option customises a Server.
type Option func(*Server)

// WithPipelineFactory sets how each new session builds its pipeline.
func WithPipelineFactory(f func() *pipeline.Pipeline) Option {
	return func(s *Server) {
		s.sessions.newPipeline = f
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// WithClock sets the clock used for session expiry and ticket timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
		s.sessions.now = now
	}
}

// WithRandomPicks replaces the random pick source.
func WithRandomPicks(f func(n int) []draw.Pick) Option {
	return func(s *Server) {
		s.randomPicks = f
	}
}

// NewServer creates a Server storing tickets in store.
func NewServer(store storage.Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		now:   time.Now,
		randomPicks: func(n int) []draw.Pick {
			r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			return draw.RandomPicks(r, n)
		},
	}
	s.sessions = newSessions(func() *pipeline.Pipeline { return pipeline.New() }, time.Now)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the gin engine serving every route.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger)

	router.GET("/health", s.health)

	api := router.Group("/api", s.sessionMiddleware)
	api.GET("/matches", s.getMatches)
	api.GET("/draw", s.getDraw)
	api.GET("/stats", s.getStats)
	api.POST("/tickets", s.createTicket)
	api.GET("/tickets", s.listTickets)
	api.GET("/tickets/:id", s.getTicket)
	api.DELETE("/tickets/:id", s.deleteTicket)
	api.GET("/tickets/:id/export", s.exportTicket)

	return router
}

// requestLogger logs each request through the structured logger.
func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	elapsed := time.Since(start)
	logger.RecordTiming("api.request", elapsed)
	logger.Debug("http request", logger.Fields{
		"method":      c.Request.Method,
		"path":        c.FullPath(),
		"status":      c.Writer.Status(),
		"duration_ms": elapsed.Milliseconds(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"storage":  s.store.Available(),
		"sessions": s.sessions.count(),
		"metrics":  logger.GetMetricsSnapshot(),
	})
}

func refreshRequested(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.DefaultQuery("refresh", "false"))
	return err == nil && v
}

func (s *Server) getMatches(c *gin.Context) {
	entry := currentSession(c).pipeline.Resolve(c.Request.Context(), refreshRequested(c))
	c.JSON(http.StatusOK, gin.H{
		"matches":     entry.Matches,
		"stage":       entry.MatchStage,
		"best_effort": entry.MatchStage.BestEffort(),
		"acquired_at": entry.AcquiredAt,
	})
}

func (s *Server) getDraw(c *gin.Context) {
	entry := currentSession(c).pipeline.Resolve(c.Request.Context(), refreshRequested(c))
	c.JSON(http.StatusOK, gin.H{
		"draw":        entry.Info,
		"stage":       entry.InfoStage,
		"best_effort": entry.InfoStage.BestEffort(),
		"acquired_at": entry.AcquiredAt,
	})
}

// TicketRequest is the body of POST /api/tickets.
type TicketRequest struct {
	Picks  string `json:"picks"`
	Random bool   `json:"random"`
}

func (s *Server) createTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request format: %v", err)})
		return
	}
	if req.Random == (req.Picks != "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "send either picks or random"})
		return
	}

	sess := currentSession(c)
	entry := sess.pipeline.Resolve(c.Request.Context(), false)

	var picks []draw.Pick
	if req.Random {
		picks = s.randomPicks(len(entry.Matches))
	} else {
		parsed, err := draw.ParsePicks(req.Picks)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(parsed) > len(entry.Matches) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("got %d picks for %d matches", len(parsed), len(entry.Matches)),
			})
			return
		}
		picks = parsed
	}

	sheet := export.NewSheet(sess.nextNumber(), entry.Matches, entry.Info, entry.Stage(), picks, s.now())

	ticket, err := s.store.Save(c.Request.Context(), sheet)
	if errors.Is(err, storage.ErrUnavailable) {
		c.JSON(http.StatusOK, gin.H{"saved": false, "sheet": sheet})
		return
	}
	if err != nil {
		logger.Error("saving ticket", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save ticket"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"saved": true, "ticket": ticket})
}

func (s *Server) listTickets(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(storage.DefaultListLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	tickets, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func ticketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket id"})
		return 0, false
	}
	return id, true
}

func (s *Server) getTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	ticket, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (s *Server) deleteTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) exportTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatPNG)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, ticket.Sheet, format); err != nil {
		logger.Error("exporting ticket", logger.Fields{"id": id, "format": format}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export ticket"})
		return
	}

	filename := fmt.Sprintf("quiniela-%d.%s", id, format.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// storeError maps storage errors onto HTTP statuses.
func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ticket storage is unavailable"})
	default:
		logger.Error("ticket storage", logger.Fields{"path": c.FullPath()}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ticket storage failed"})
	}
}
