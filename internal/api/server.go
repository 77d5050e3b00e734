// Package api exposes the control plane over HTTP: a point-in-time event
// snapshot, a resumable live stream, risk status, and lifecycle control. It
// is a thin consumer of the event bus and a thin producer of lifecycle
// events; no trading decisions live here.
package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"trading-control/internal/broker"
	"trading-control/internal/events"
	"trading-control/internal/risk"
	"trading-control/pkg/audit"
	"trading-control/pkg/config"
)

// Server wires HTTP endpoints around the event bus.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	Risks     *risk.Registry
	Venues    *broker.Registry
	Audit     *audit.Trail
	Styles    []config.TradingStyle
	JWTSecret string

	mu   sync.RWMutex
	mode string
}

func NewServer(bus *events.Bus, risks *risk.Registry, venues *broker.Registry, trail *audit.Trail, jwtSecret string) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Bus:       bus,
		Risks:     risks,
		Venues:    venues,
		Audit:     trail,
		JWTSecret: jwtSecret,
		mode:      "stopped",
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/status", s.status)
	s.Router.GET("/accounts", s.accounts)
	s.Router.GET("/risk", s.riskStatus)
	s.Router.GET("/positions", s.positions)
	s.Router.GET("/monitor/events", s.monitorEvents)
	s.Router.GET("/monitor/stream", s.monitorStream)
	s.Router.GET("/ws", s.websocket)
	s.Router.GET("/audit", s.auditRecent)
	s.Router.GET("/styles", s.styles)
	s.Router.GET("/styles/:name", s.styleByName)

	control := s.Router.Group("")
	control.Use(AuthMiddleware(s.JWTSecret))
	{
		control.POST("/run", s.run)
		control.POST("/stop", s.stop)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	s.mu.RLock()
	mode := s.mode
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

func (s *Server) run(c *gin.Context) {
	mode := c.DefaultQuery("mode", "live")
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.Bus.Publish(events.CategoryLifecycle, map[string]any{"mode": mode})
	c.JSON(http.StatusOK, gin.H{"mode": mode})
}

func (s *Server) stop(c *gin.Context) {
	s.mu.Lock()
	s.mode = "stopped"
	s.mu.Unlock()
	s.Bus.Publish(events.CategoryLifecycle, map[string]any{"mode": "stopped"})
	c.JSON(http.StatusOK, gin.H{"mode": "stopped"})
}

func (s *Server) accounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": s.Risks.Accounts()})
}

func (s *Server) riskStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Risks.StatusAll())
}

func (s *Server) positions(c *gin.Context) {
	account := c.Query("account")
	venue := c.Query("venue")
	if account == "" || venue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account and venue are required"})
		return
	}
	client, err := s.Venues.Get(venue)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": client.Positions(account)})
}

func (s *Server) monitorEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": s.Bus.Snapshot()})
}

func (s *Server) auditRecent(c *gin.Context) {
	if s.Audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit trail not configured"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	recs, err := s.Audit.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *Server) styles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": s.Styles})
}

func (s *Server) styleByName(c *gin.Context) {
	style, err := config.Style(c.Param("name"), s.Styles)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, style)
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
