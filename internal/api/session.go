package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leonmuri/Progol-aleatorio2/internal/logger"
	"github.com/leonmuri/Progol-aleatorio2/internal/pipeline"
)

const (
	SessionCookie = "progol_session"

	// SessionTTL is how long an idle session keeps its pipeline.
	SessionTTL = 12 * time.Hour

	sessionKey = "session"
)

// session is the per-visitor state.
type session struct {
	id       string
	pipeline *pipeline.Pipeline

	mu       sync.Mutex
	sheets   int
	lastSeen time.Time
}

// nextNumber returns the next ticket number for this session, starting at 1.
func (s *session) nextNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets++
	return s.sheets
}

// sessions owns every live session. Idle sessions are pruned when a new
// one is created.
type sessions struct {
	mu          sync.Mutex
	byID        map[string]*session
	newPipeline func() *pipeline.Pipeline
	now         func() time.Time
}

func newSessions(newPipeline func() *pipeline.Pipeline, now func() time.Time) *sessions {
	return &sessions{
		byID:        make(map[string]*session),
		newPipeline: newPipeline,
		now:         now,
	}
}

// get returns the session for id, creating a fresh one when id is unknown.
func (s *sessions) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.byID[id]; ok && id != "" {
		sess.mu.Lock()
		sess.lastSeen = now
		sess.mu.Unlock()
		return sess
	}

	s.prune(now)

	sess := &session{
		id:       uuid.NewString(),
		pipeline: s.newPipeline(),
		lastSeen: now,
	}
	s.byID[sess.id] = sess
	logger.SetGauge("api.sessions", float64(len(s.byID)))
	return sess
}

func (s *sessions) prune(now time.Time) {
	for id, sess := range s.byID {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		sess.mu.Unlock()
		if idle > SessionTTL {
			delete(s.byID, id)
		}
	}
}

func (s *sessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// sessionMiddleware attaches the caller's session and refreshes its cookie.
func (srv *Server) sessionMiddleware(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)
	sess := srv.sessions.get(id)

	if sess.id != id {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.id,
			Path:     "/",
			MaxAge:   int(SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   srv.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	c.Set(sessionKey, sess)
	c.Next()
}

func currentSession(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}
