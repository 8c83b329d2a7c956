package session

import (
	"log/slog"
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Manager loads sessions from requests and writes them back to responses.
type Manager struct {
	codec  *codec
	secure bool
	logger *slog.Logger
}

// NewManager creates a Manager. secret must be at least MinSecretLength
// characters; secure sets the cookie's Secure flag (enable behind HTTPS).
func NewManager(secret string, ttl time.Duration, secure bool, logger *slog.Logger) (*Manager, error) {
	c, err := newCodec(secret, ttl)
	if err != nil {
		return nil, err
	}
	return &Manager{codec: c, secure: secure, logger: logger}, nil
}

// Load is the session-lookup middleware. It decodes the cookie once and
// stores the resulting *Session in the request context. A missing, expired
// or tampered cookie yields an anonymous session; the request always
// continues.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &Session{}

		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			decoded, err := m.codec.decode(cookie.Value)
			if err != nil {
				m.logger.Debug("discarding session cookie", slog.String("error", err.Error()))
				// Overwrite the bad cookie on the next Commit.
				s.changed = true
			} else {
				s = decoded
			}
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// Commit writes s back as a cookie if it changed during the request. It must
// run before the response status is written. An empty session deletes the
// cookie.
func (m *Manager) Commit(w http.ResponseWriter, s *Session) error {
	if !s.Changed() {
		return nil
	}

	if s.empty() {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
		s.changed = false
		return nil
	}

	token, err := m.codec.encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.codec.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.changed = false
	return nil
}

// RequireUser redirects anonymous requests to redirectTo. It must be
// mounted after Load.
func RequireUser(redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).Authenticated() {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
