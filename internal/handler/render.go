// Package handler contains the HTTP request handlers: server-rendered pages
// for browsers and a JSON resource under /api for API clients.
//
// Handlers parse the request, call a service, and write the response. They
// hold no business rules; a handler that needs to decide something asks a
// service.
//
// Page handlers read the per-request session with session.FromContext and
// must write it back (Manager.Commit) before the response status goes out.
// Renderer.Render and Renderer.Redirect do that for them.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/enrollment/internal/session"
)

// Page names. Each one is a file <name>.html in the template directory that
// defines the "content" block used by base.html.
const (
	PageIndex      = "index"
	PageCourses    = "courses"
	PageRegister   = "register"
	PageLogin      = "login"
	PageEnrollment = "enrollment"
	PageUsers      = "users"
	PageCSS        = "css"
)

var pages = []string{PageIndex, PageCourses, PageRegister, PageLogin, PageEnrollment, PageUsers, PageCSS}

// PageData is what every page template receives.
//
// The layout fields (LoggedIn, Username, Flashes) are filled in by Render
// from the session; handlers only set Title, Active and their own fields.
type PageData struct {
	Title  string
	Active string // nav entry to highlight

	LoggedIn bool
	Username string
	Flashes  []session.Flash

	// Form re-populates inputs after a failed submit; Errors holds one
	// message per input name.
	Form   any
	Errors map[string]string

	Data any
}

// Renderer executes page templates and writes the session back before the
// response goes out.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *session.Manager
	logger   *slog.Logger
}

// NewRenderer parses base.html together with every page at startup. Each page
// gets its own template set so their "content" blocks don't collide.
func NewRenderer(templateDir string, sessions *session.Manager, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")

	parsed := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		parsed[name] = tmpl
	}

	return &Renderer{pages: parsed, sessions: sessions, logger: logger}, nil
}

// Render executes page with data and writes it with the given status.
//
// Pending flashes are moved from the session into data, so they are shown
// exactly once. The template runs into a buffer first: a failing template
// becomes a clean 500 and the flashes stay in the session.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s := session.FromContext(r.Context())
	data.LoggedIn = s.Authenticated()
	data.Username = s.Name
	pending := s.Flashes
	data.Flashes = s.PopFlashes()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		s.Flashes = pending
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := rn.sessions.Commit(w, s); err != nil {
		rn.logger.Error("failed to save session", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rn.logger.Debug("client went away", slog.String("error", err.Error()))
	}
}

// Redirect saves the session and sends the browser to url with 303 See
// Other, so a POST is followed by a GET.
func (rn *Renderer) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := rn.sessions.Commit(w, session.FromContext(r.Context())); err != nil {
		rn.logger.Error("failed to save session", slog.String("error", err.Error()))
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// serverError logs err and shows a generic failure banner on the index page.
func (rn *Renderer) serverError(w http.ResponseWriter, r *http.Request, err error) {
	rn.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	session.FromContext(r.Context()).AddFlash(session.FlashDanger, "Something went wrong, please try again.")
	rn.Render(w, r, http.StatusInternalServerError, PageIndex, PageData{Title: "Error"})
}
