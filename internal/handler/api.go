package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/enrollment/internal/apperror"
	"github.com/sakif/enrollment/internal/payload"
	"github.com/sakif/enrollment/internal/service"
)

// UserAPIHandler is the JSON resource over user records for API clients.
// It is not authenticated.
//
//	GET    /api        → all users
//	POST   /api        → create a user (201)
//	GET    /api/{id}   → one user
//	PUT    /api/{id}   → merge fields into a user
//	DELETE /api/{id}   → delete a user, return the remaining ones
//
// Password hashes are never part of a response (model.User tags them "-").
type UserAPIHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewUserAPIHandler(accounts *service.AccountService, logger *slog.Logger) *UserAPIHandler {
	return &UserAPIHandler{accounts: accounts, logger: logger}
}

// HandleList returns every user.
//
// HTTP: GET /api, GET /api/
func (h *UserAPIHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, users)
}

// HandleCreate creates a user with a client-chosen id.
//
// HTTP: POST /api, POST /api/
// REQUEST BODY: {"user_id": 7, "first_name": "Ana", "last_name": "Lopez",
// "email": "a@x.com", "password": "password1"}
func (h *UserAPIHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateUserRequest
	if err := payload.DecodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.CreateUser(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, user)
}

// HandleGet returns one user.
//
// HTTP: GET /api/{id}
func (h *UserAPIHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// HandleUpdate merges the fields present in the body into the user.
//
// HTTP: PUT /api/{id}
// REQUEST BODY: any of {"first_name", "last_name", "email", "password"}
func (h *UserAPIHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req payload.UpdateUserRequest
	if err := payload.DecodeAndValidate(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// HandleDelete removes the user and their enrollments.
//
// HTTP: DELETE /api/{id}
// RESPONSE: the remaining users
func (h *UserAPIHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	remaining, err := h.accounts.DeleteUser(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, remaining)
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer, got "+strconv.Quote(raw))
	}
	return id, nil
}
