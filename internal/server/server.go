// Package server exposes the dashboard over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"DipWatch/internal/analysis"
	"DipWatch/internal/metrics"
	"DipWatch/internal/model"
	"DipWatch/internal/recorder"
	"DipWatch/internal/session"
)

const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "dipwatch_session"
	sessionKey    = "session_id"
)

// Server serves analysis passes to browsers and scripts.
type Server struct {
	Analyzer        *analysis.Analyzer
	Recorder        recorder.Recorder
	Sessions        *session.Store
	RefreshInterval time.Duration

	engine *gin.Engine
	http   *http.Server

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// New builds the gin engine and routes.
func New(an *analysis.Analyzer, rec recorder.Recorder, sessions *session.Store, refresh time.Duration, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		Analyzer:        an,
		Recorder:        rec,
		Sessions:        sessions,
		RefreshInterval: refresh,
		engine:          gin.New(),
		clients:         make(map[*Client]struct{}),
	}
	s.engine.Use(gin.Recovery())
	if debug {
		s.engine.Use(gin.Logger())
	}
	s.engine.Use(s.sessionMiddleware)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/resolve", s.getResolve)
	s.engine.GET("/api/analysis", s.getAnalysis)
	s.engine.GET("/api/history", s.getHistory)
	s.engine.GET("/metrics", gin.WrapH(s.Analyzer.Metrics.Handler()))

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] HTTP server listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and closes open streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// sessionMiddleware ties every request to a session, taken from the header or cookie.
func (s *Server) sessionMiddleware(c *gin.Context) {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		id, _ = c.Cookie(sessionCookie)
	}
	sess := s.Sessions.Ensure(id)
	c.Set(sessionKey, sess.ID)
	c.Header(sessionHeader, sess.ID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	c.Next()
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func statusFor(err error) int {
	switch analysis.Outcome(err) {
	case metrics.OutcomeEmptyInput:
		return http.StatusBadRequest
	case metrics.OutcomeNotRecognized:
		return http.StatusNotFound
	case metrics.OutcomeNoData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), errorResponse{Error: analysis.UserMessage(err), Kind: analysis.Outcome(err)})
}

func (s *Server) getHealth(c *gin.Context) {
	s.mu.Lock()
	connections := len(s.clients)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"provider":    s.Analyzer.Fetcher.Name(),
		"connections": connections,
		"sessions":    s.Sessions.Len(),
	})
}

func (s *Server) getResolve(c *gin.Context) {
	input := c.Query("q")
	sym, err := s.Analyzer.Resolve(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"input": input, "symbol": sym})
}

type analysisResponse struct {
	SessionID string          `json:"session_id"`
	Analysis  *model.Analysis `json:"analysis"`
	Rows      []model.Row     `json:"rows"`
}

func (s *Server) getAnalysis(c *gin.Context) {
	input := c.Query("q")
	res, err := s.Analyzer.Run(c.Request.Context(), "http", input)
	if err != nil {
		writeError(c, err)
		return
	}
	s.Sessions.Touch(sessionID(c), input, res.Symbol)

	rows := res.Rows()
	if complete, _ := strconv.ParseBool(c.Query("complete")); complete {
		rows = res.CompleteRows()
		if n, err := strconv.Atoi(c.Query("rows")); err == nil && n > 0 && n < len(rows) {
			rows = rows[:n]
		}
	}
	c.JSON(http.StatusOK, analysisResponse{SessionID: sessionID(c), Analysis: res, Rows: rows})
}

func (s *Server) getHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	events, err := s.Recorder.RecentAnalyses(limit)
	if err != nil {
		log.Printf("[ERROR] load history: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "history unavailable", Kind: "internal"})
		return
	}
	if events == nil {
		events = []recorder.AnalysisEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"analyses": events})
}
