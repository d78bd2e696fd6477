package service

import (
	"context"
	"sync"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/infra/observability"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/port"

	"go.uber.org/zap"
)

const (
	defaultRedirectDelay  = time.Second
	defaultRedirectTarget = "/"
)

// ============================================================
// Post-login redirect
// ============================================================

// AuthRedirect schedules the navigation from the "Vérification en
// cours..." screen to the application root.
type AuthRedirect struct {
	delay   time.Duration
	target  string
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthRedirect creates the redirect scheduler. A non-positive delay
// falls back to one second and an empty target to "/".
func NewAuthRedirect(delay time.Duration, target string, metrics *observability.Metrics, logger *zap.Logger) *AuthRedirect {
	if delay <= 0 {
		delay = defaultRedirectDelay
	}
	if target == "" {
		target = defaultRedirectTarget
	}
	return &AuthRedirect{
		delay:   delay,
		target:  target,
		metrics: metrics,
		logger:  logger,
	}
}

// Delay returns the configured redirect delay.
func (a *AuthRedirect) Delay() time.Duration { return a.delay }

// Target returns the navigation target.
func (a *AuthRedirect) Target() string { return a.target }

// Page returns the content of the redirect screen.
func (a *AuthRedirect) Page(eventsPath string) domain.CallbackPage {
	secs := int((a.delay + time.Second - 1) / time.Second)
	return domain.CallbackPage{
		Title:        "Vérification en cours...",
		Message:      "Redirection vers votre dashboard",
		Target:       a.target,
		DelaySeconds: secs,
		EventsPath:   eventsPath,
	}
}

// Mount starts the one-shot timer. Navigation happens at most once,
// and never after the returned handle is unmounted.
func (a *AuthRedirect) Mount(ctx context.Context, nav port.Navigator) *RedirectHandle {
	h := &RedirectHandle{
		ctx:    ctx,
		nav:    nav,
		parent: a,
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	h.timer = time.AfterFunc(a.delay, h.fire)
	h.mu.Unlock()
	return h
}

// RedirectHandle is a mounted redirect timer.
type RedirectHandle struct {
	mu     sync.Mutex
	state  domain.RedirectState
	timer  *time.Timer
	ctx    context.Context
	nav    port.Navigator
	parent *AuthRedirect
	done   chan struct{}
}

// fire runs on the timer goroutine. The lock is held across Navigate so
// Unmount cannot return while a navigation is in flight.
func (h *RedirectHandle) fire() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != domain.RedirectPending {
		return
	}
	h.state = domain.RedirectIssued
	defer close(h.done)

	if err := h.nav.Navigate(h.ctx, h.parent.target); err != nil {
		h.parent.logger.Warn("redirect navigation failed",
			zap.String("target", h.parent.target),
			zap.Error(err),
		)
	}
	h.parent.metrics.IncrRedirect(domain.RedirectIssued)
}

// Unmount cancels a pending redirect. It is idempotent and has no
// effect once the navigation was issued.
func (h *RedirectHandle) Unmount() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != domain.RedirectPending {
		return
	}
	h.timer.Stop()
	h.state = domain.RedirectCancelled
	close(h.done)
	h.parent.metrics.IncrRedirect(domain.RedirectCancelled)
}

// State returns the current lifecycle state.
func (h *RedirectHandle) State() domain.RedirectState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the redirect was issued or cancelled.
func (h *RedirectHandle) Done() <-chan struct{} {
	return h.done
}
