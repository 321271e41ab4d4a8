package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
)

const stateCookieName = "vocalagent_oauth_state"

// handleGoogleLogin starts the OAuth consent flow. The random state value is
// pinned in a short-lived cookie and checked again on callback.
func (s *Server) handleGoogleLogin(c echo.Context) error {
	state := shortuuid.New()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   !s.Profile.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, s.authManager.AuthURL(state))
}

func (s *Server) handleGoogleCallback(c echo.Context) error {
	if errParam := c.QueryParam("error"); errParam != "" {
		return echo.NewHTTPError(http.StatusBadRequest, "google sign-in was cancelled")
	}

	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return echo.NewHTTPError(http.StatusBadRequest, "state mismatch, please retry sign-in")
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")
	}

	email, err := s.authManager.Exchange(c.Request().Context(), code)
	if err != nil {
		slog.Error("google token exchange failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "google sign-in failed, please retry")
	}

	s.clearCookie(c, stateCookieName, "/auth/google")
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    s.sessions.Sign(email),
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   !s.Profile.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/")
}

// handleLogout ends the browser session. With ?disconnect=true it also drops
// the stored Google credential, forcing a fresh consent on the next sign-in.
func (s *Server) handleLogout(c echo.Context) error {
	actor := actorFrom(c)
	if c.QueryParam("disconnect") == "true" {
		if err := s.authManager.SignOut(c.Request().Context(), actor); err != nil {
			slog.Error("failed to remove google credential", "actor", actor, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to disconnect google account")
		}
	}
	s.history.clear(actor)
	s.clearCookie(c, sessionCookieName, "/")
	return c.JSON(http.StatusOK, map[string]string{"status": "signed out"})
}

func (s *Server) clearCookie(c echo.Context, name, path string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
