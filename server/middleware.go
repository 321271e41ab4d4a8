package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/time/rate"
)

const (
	actorContextKey = "actor"
	requestIDHeader = "X-Request-Id"
)

func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(requestIDHeader)
			if rid == "" {
				rid = shortuuid.New()
			}
			c.Response().Header().Set(requestIDHeader, rid)
			c.Set(requestIDHeader, rid)
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Get(requestIDHeader),
			)
			return err
		}
	}
}

// requireSession resolves the session cookie to the signed-in account's email
// and stores it on the request context. Requests without a valid session get
// a 401 before any handler runs.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
		}
		email, err := s.sessions.Verify(cookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "session expired, please sign in again")
		}
		c.Set(actorContextKey, email)
		return next(c)
	}
}

func actorFrom(c echo.Context) string {
	if v, ok := c.Get(actorContextKey).(string); ok {
		return v
	}
	return ""
}

// actorLimiter throttles assistant calls per signed-in account. Planner calls
// fan out to a paid LLM API, so the cap is deliberately low.
type actorLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newActorLimiter() *actorLimiter {
	return &actorLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *actorLimiter) get(actor string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[actor]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 5)
		l.limiters[actor] = lim
	}
	return lim
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.get(actorFrom(c)).Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "slow down a little")
		}
		return next(c)
	}
}
