// Package server hosts the HTTP side of the bot: the Google OAuth redirect
// endpoint, health checks, and prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AuthExchanger turns an OAuth redirect into a parked credential and reports
// which user the state nonce belongs to.
type AuthExchanger interface {
	HandleCallback(ctx context.Context, code, state string) (userID string, err error)
}

// AuthNotifier tells the user, back in chat, that the browser leg of the
// authorization finished.
type AuthNotifier interface {
	NotifyAuthChoice(ctx context.Context, userID string) error
}

// Server is the bot's HTTP server.
type Server struct {
	echo *echo.Echo
	addr string
}

// New assembles the routes. metricsHandler may be nil to disable /metrics.
func New(addr string, auth AuthExchanger, notifier AuthNotifier, metricsHandler http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	e.GET("/oauth2callback", func(c echo.Context) error {
		code := c.QueryParam("code")
		state := c.QueryParam("state")
		if code == "" || state == "" {
			return c.HTML(http.StatusBadRequest, failurePage("Missing authorization code."))
		}

		ctx := c.Request().Context()
		userID, err := auth.HandleCallback(ctx, code, state)
		if err != nil {
			slog.Error("oauth callback failed", "error", err)
			return c.HTML(http.StatusBadRequest, failurePage("The authorization could not be completed. Please try again from the chat."))
		}

		if notifier != nil {
			if err := notifier.NotifyAuthChoice(ctx, userID); err != nil {
				slog.Error("failed to notify user after authorization", "user_id", userID, "error", err)
			}
		}
		return c.HTML(http.StatusOK, successPage)
	})

	return &Server{echo: e, addr: addr}
}

// Start serves until the listener fails or Shutdown is called. It returns
// http.ErrServerClosed on a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown failed", "error", err)
		}
	}()

	slog.Info("http server listening", "addr", s.addr)
	return s.echo.Start(s.addr)
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
  <h1>✅ Authorization successful!</h1>
  <p>You can close this window and return to your chat with Remo.</p>
</body>
</html>`

func failurePage(reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
  <h1>❌ Authorization failed</h1>
  <p>%s</p>
</body>
</html>`, reason)
}
