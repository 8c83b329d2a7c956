package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/enrollment/internal/model"
	"github.com/sakif/enrollment/internal/service"
)

// PageHandler serves the read-only pages: landing, catalog, user listing
// and the stylesheet check page.
type PageHandler struct {
	render   *Renderer
	catalog  *service.CatalogService
	accounts *service.AccountService
	now      func() time.Time
}

func NewPageHandler(render *Renderer, catalog *service.CatalogService, accounts *service.AccountService) *PageHandler {
	return &PageHandler{render: render, catalog: catalog, accounts: accounts, now: time.Now}
}

// HandleIndex serves the landing page.
//
// HTTP: GET / and GET /index
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, PageIndex, PageData{Title: "Home", Active: PageIndex})
}

// CoursesData is the catalog page's Data.
type CoursesData struct {
	Year    int
	Courses []model.Course
}

// HandleCourses lists the whole catalog.
//
// HTTP: GET /courses and GET /courses/{year}
//
// The year is only displayed in the heading; the listing is not filtered
// by it. Without one the current year is shown.
func (h *PageHandler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if raw := chi.URLParam(r, "year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		year = parsed
	}

	courses, err := h.catalog.ListCourses(r.Context())
	if err != nil {
		h.render.serverError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, PageCourses, PageData{
		Title:  "Courses",
		Active: PageCourses,
		Data:   CoursesData{Year: year, Courses: courses},
	})
}

// HandleUsers lists every registered account. It is deliberately public.
//
// HTTP: GET /user
func (h *PageHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.render.serverError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, PageUsers, PageData{
		Title:  "Users",
		Active: PageUsers,
		Data:   users,
	})
}

// HandleCSSTest renders a page exercising every style in main.css.
//
// HTTP: GET /css-test
func (h *PageHandler) HandleCSSTest(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, PageCSS, PageData{Title: "CSS test"})
}
