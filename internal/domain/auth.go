package domain

import "time"

// ============================================================
// Auth: session hand-off and post-login redirect
// ============================================================

// Session is the identity carried by a verified access token.
type Session struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RedirectState is the lifecycle of a mounted redirect timer.
type RedirectState int

const (
	RedirectPending RedirectState = iota
	RedirectIssued
	RedirectCancelled
)

func (s RedirectState) String() string {
	switch s {
	case RedirectPending:
		return "pending"
	case RedirectIssued:
		return "issued"
	case RedirectCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CallbackPage is the content of the "Vérification en cours..." screen.
type CallbackPage struct {
	Title        string
	Message      string
	Target       string
	DelaySeconds int
	EventsPath   string
}
