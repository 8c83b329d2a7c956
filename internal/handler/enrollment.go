package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/service"
	"github.com/sakif/enrollment/internal/session"
)

// EnrollmentHandler enrolls the logged-in user in courses and lists their
// enrollments. Its route is mounted behind session.RequireUser.
type EnrollmentHandler struct {
	render  *Renderer
	catalog *service.CatalogService
}

func NewEnrollmentHandler(render *Renderer, catalog *service.CatalogService) *EnrollmentHandler {
	return &EnrollmentHandler{render: render, catalog: catalog}
}

// HandleEnrollment optionally enrolls, then shows the user's courses.
//
// HTTP: GET /enrollment, POST /enrollment
// FORM: course_id, title (title only labels the flash message)
//
// A repeated or unknown course flashes a danger banner and goes back to
// the catalog without writing anything.
func (h *EnrollmentHandler) HandleEnrollment(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.AddFlash(session.FlashDanger, "Could not read the submitted form.")
			h.render.Redirect(w, r, "/courses")
			return
		}

		courseID := strings.TrimSpace(r.PostFormValue("course_id"))
		title := strings.TrimSpace(r.PostFormValue("title"))
		if title == "" {
			title = courseID
		}

		if courseID != "" {
			err := h.catalog.Enroll(r.Context(), s.UserID, courseID)
			switch {
			case err == nil:
				s.AddFlash(session.FlashSuccess, "You are enrolled in "+title+"!")
			case errors.Is(err, service.ErrAlreadyEnrolled):
				s.AddFlash(session.FlashDanger, "Oops! You are already enrolled in "+title+".")
				h.render.Redirect(w, r, "/courses")
				return
			case errors.Is(err, apperror.ErrNotFound):
				s.AddFlash(session.FlashDanger, "There is no course "+courseID+".")
				h.render.Redirect(w, r, "/courses")
				return
			default:
				h.render.serverError(w, r, err)
				return
			}
		}
	}

	rows, err := h.catalog.EnrolledCourses(r.Context(), s.UserID)
	if errors.Is(err, apperror.ErrNotFound) {
		// The account behind the session is gone (deleted through the API).
		s.Logout()
		s.AddFlash(session.FlashDanger, "Your account no longer exists.")
		h.render.Redirect(w, r, "/register")
		return
	}
	if err != nil {
		h.render.serverError(w, r, err)
		return
	}

	h.render.Render(w, r, http.StatusOK, PageEnrollment, PageData{
		Title:  "Enrollment",
		Active: PageEnrollment,
		Data:   rows,
	})
}
