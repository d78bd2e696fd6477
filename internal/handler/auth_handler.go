package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"go.uber.org/zap"
)

const callbackEventsPath = "/auth/callback/events"

// ============================================================
// Auth callback: GET /auth/callback
// ============================================================

func authCallbackHandler(redirect *service.AuthRedirect, sessions *service.SessionVerifier, tmpl *template.Template, opts Options, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /auth/callback")
		defer span.End()

		if token := r.URL.Query().Get("access_token"); token != "" && sessions.Enabled() {
			session, err := sessions.Verify(token)
			if err != nil {
				logger.Warn("auth callback: rejected access token",
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				Expires:  session.ExpiresAt,
				HttpOnly: true,
				Secure:   opts.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			logger.Info("session established", zap.String("subject", session.Subject))
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "auth_callback.html", redirect.Page(callbackEventsPath)); err != nil {
			logger.Error("failed to render auth callback", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// ============================================================
// Redirect stream: GET /auth/callback/events
// ============================================================

// sseNavigator delivers a navigation as a Server-Sent Event.
type sseNavigator struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (n *sseNavigator) Navigate(_ context.Context, path string) error {
	if _, err := fmt.Fprintf(n.w, "event: navigate\ndata: %s\n\n", path); err != nil {
		return err
	}
	n.flusher.Flush()
	return nil
}

// authEventsHandler mounts a redirect for the lifetime of the request.
// The client disconnecting unmounts it.
func authEventsHandler(redirect *service.AuthRedirect, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /auth/callback/events")
		defer span.End()

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		h := redirect.Mount(ctx, &sseNavigator{w: w, flusher: flusher})
		select {
		case <-h.Done():
		case <-ctx.Done():
			h.Unmount()
			logger.Debug("redirect stream closed before navigation", zap.Error(ctx.Err()))
		}
	}
}

// ============================================================
// Dev Tools: POST /v1/dev/session-token
// ============================================================

func devSessionTokenHandler(sessions *service.SessionVerifier, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /v1/dev/session-token")
		defer span.End()

		if !sessions.Enabled() {
			writeError(w, http.StatusServiceUnavailable, "JWT_SECRET not configured")
			return
		}

		subject := r.URL.Query().Get("sub")
		if subject == "" {
			subject = "dev-user"
		}
		token, err := sessions.Sign(subject, r.URL.Query().Get("email"), "authenticated", time.Hour)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"accessToken": token,
			"callbackUrl": "/auth/callback?access_token=" + token,
		})
	}
}
