// Package session carries per-browser state between requests: who is logged
// in and which flash messages are waiting to be shown.
//
// The state lives in a single HttpOnly cookie holding an HS256-signed JWT
// (see codec.go). Nothing is stored server-side, so any instance holding the
// secret can read it. The signature stops clients from editing the user id;
// it does not hide the contents.
//
// Flow per request:
//
//	Manager.Load (middleware) → decode cookie → *Session in request context
//	handler                   → FromContext(ctx), read/modify the session
//	handler                   → Manager.Commit(w, s) before writing the response
package session

import "context"

// Flash categories. They double as CSS classes for the banner colour.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Session is the decoded per-request state. The zero value is an anonymous
// session with no pending flashes.
type Session struct {
	UserID  int64
	Name    string
	Flashes []Flash

	changed bool
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s.UserID != 0
}

// Login marks the session as belonging to userID, displayed as name.
func (s *Session) Login(userID int64, name string) {
	s.UserID = userID
	s.Name = name
	s.changed = true
}

// Logout clears the authenticated user. Calling it on an anonymous session
// is harmless. Pending flashes survive so a "logged out" banner can follow.
func (s *Session) Logout() {
	if s.UserID == 0 && s.Name == "" {
		return
	}
	s.UserID = 0
	s.Name = ""
	s.changed = true
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	s.changed = true
}

// PopFlashes returns the pending flashes and forgets them.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	s.changed = true
	return flashes
}

// Changed reports whether the session must be written back.
func (s *Session) Changed() bool {
	return s.changed
}

func (s *Session) empty() bool {
	return s.UserID == 0 && s.Name == "" && len(s.Flashes) == 0
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the request's session. A request that did not pass
// through Manager.Load gets a fresh anonymous session, never nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
