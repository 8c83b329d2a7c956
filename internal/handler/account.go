package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/form"
	"github.com/sakif/enrollment/internal/service"
	"github.com/sakif/enrollment/internal/session"
)

// afterAuth is where register, login and logout send the browser.
const afterAuth = "/courses"

// AccountHandler manages registration, login and logout.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → show the form / create the account
//   - HandleLogin    → show the form / put the user into the session
//   - HandleLogout   → take the user out of the session
type AccountHandler struct {
	render   *Renderer
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(render *Renderer, accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{render: render, accounts: accounts, logger: logger}
}

// HandleRegister serves and processes the registration form.
//
// HTTP: GET /register, POST /register
//
// A logged-in user is sent to /index. Field errors re-render the form with
// the submitted values (passwords excluded) and a message under each input.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s.Authenticated() {
		h.render.Redirect(w, r, "/index")
		return
	}

	data := PageData{Title: "New user registration", Active: PageRegister}
	if r.Method != http.MethodPost {
		h.render.Render(w, r, http.StatusOK, PageRegister, data)
		return
	}

	f, err := form.ParseRegister(r)
	if err != nil {
		data.Errors = map[string]string{"form": "Could not read the submitted form"}
		h.render.Render(w, r, http.StatusBadRequest, PageRegister, data)
		return
	}

	user, err := h.accounts.Register(r.Context(), f)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			f.Password, f.ConfirmPassword = "", ""
			data.Form = f
			data.Errors = appErr.Fields
			h.render.Render(w, r, http.StatusUnprocessableEntity, PageRegister, data)
			return
		}
		h.render.serverError(w, r, err)
		return
	}

	s.AddFlash(session.FlashSuccess, "Registration successful, "+user.FirstName+". You can log in now.")
	h.render.Redirect(w, r, afterAuth)
}

// HandleLogin serves and processes the login form.
//
// HTTP: GET /login, POST /login
//
// Malformed input re-renders the form with a message under each field.
// A failed login never says whether the email or the password was wrong.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s.Authenticated() {
		h.render.Redirect(w, r, "/index")
		return
	}

	data := PageData{Title: "Login", Active: PageLogin}
	if r.Method != http.MethodPost {
		h.render.Render(w, r, http.StatusOK, PageLogin, data)
		return
	}

	f, err := form.ParseLogin(r)
	if err != nil {
		data.Errors = map[string]string{"form": "Could not read the submitted form"}
		h.render.Render(w, r, http.StatusBadRequest, PageLogin, data)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), f)
	if err != nil {
		data.Form = form.LoginForm{Email: f.Email}

		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation):
			data.Errors = appErr.Fields
			h.render.Render(w, r, http.StatusUnprocessableEntity, PageLogin, data)
		case errors.Is(err, service.ErrInvalidCredentials):
			s.AddFlash(session.FlashDanger, "Sorry, something went wrong with your login.")
			h.render.Render(w, r, http.StatusUnauthorized, PageLogin, data)
		default:
			h.render.serverError(w, r, err)
		}
		return
	}

	s.Login(user.UserID, user.FirstName)
	s.AddFlash(session.FlashSuccess, user.FirstName+", you are successfully logged in!")
	h.render.Redirect(w, r, afterAuth)
}

// HandleLogout clears the logged-in user. It is safe to call when nobody is
// logged in.
//
// HTTP: GET /logout
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s.Authenticated() {
		h.logger.Info("user logged out", slog.Int64("userID", s.UserID))
	}
	s.Logout()
	h.render.Redirect(w, r, afterAuth)
}
