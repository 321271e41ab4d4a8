// Package server exposes the assistant over HTTP. It owns the echo instance,
// the Google sign-in flow, and the session cookie that ties a browser to a
// connected Google account.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vocalagent/vocalagent/agent"
	"github.com/vocalagent/vocalagent/auth"
	"github.com/vocalagent/vocalagent/internal/profile"
	"github.com/vocalagent/vocalagent/planner"
	"github.com/vocalagent/vocalagent/store"
)

const sessionCookieName = "vocalagent_session"

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	processor  *agent.Processor
	planner    *planner.Planner
	classifier *planner.Classifier

	authManager *auth.Manager
	sessions    *auth.SessionSigner
	history     *historyBook
	limiter     *actorLimiter
}

// Dependencies carries the already-wired domain services the server fronts.
type Dependencies struct {
	Processor  *agent.Processor
	Planner    *planner.Planner
	Classifier *planner.Classifier
	Auth       *auth.Manager
	Metrics    *prometheus.Registry
}

func NewServer(_ context.Context, p *profile.Profile, st *store.Store, deps Dependencies) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	reg := deps.Metrics
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		e:           e,
		Profile:     p,
		Store:       st,
		processor:   deps.Processor,
		planner:     deps.Planner,
		classifier:  deps.Classifier,
		authManager: deps.Auth,
		sessions:    auth.NewSessionSigner(p.SessionSecret),
		history:     newHistoryBook(),
		limiter:     newActorLimiter(),
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(_ string) (bool, error) {
			return true, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
	e.Use(requestIDMiddleware())
	e.Use(requestLogger())

	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	authGroup := e.Group("/auth/google")
	authGroup.GET("/login", s.handleGoogleLogin)
	authGroup.GET("/callback", s.handleGoogleCallback)
	authGroup.POST("/logout", s.handleLogout, s.requireSession)

	api := e.Group("/api/v1")
	api.POST("/echo", s.handleEcho)

	assistant := api.Group("", s.requireSession, s.rateLimit)
	assistant.POST("/assistant", s.handleAssistant)
	assistant.POST("/assistant/execute", s.handleExecute)
	assistant.GET("/logs", s.handleLogs)
	assistant.GET("/me", s.handleMe)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.e.Logger.Fatal(err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		s.e.Logger.Error(err)
	}
	if err := s.Store.Close(); err != nil {
		s.e.Logger.Error(err)
	}
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"email": actorFrom(c)})
}
