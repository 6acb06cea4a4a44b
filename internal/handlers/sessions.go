package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/google/uuid"
)

// NewSession renders the login form.
func (h *Handler) NewSession(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "sessions_new", nil)
}

// CreateSession logs a user in. Failures never set a session cookie.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(r.PostFormValue("name"))

	user, err := h.users.Authenticate(ctx, name, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.Info(ctx, "login failed")
			h.addFlash(w, r, "Invalid name or password.")
			redirect(w, r, auth.LoginPath)
			return
		}
		h.serverError(w, r, err)
		return
	}

	if err := h.gate.SignIn(w, r, user); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.record(ctx, r, models.ActivitySessionStarted, user.ID, uuid.Nil)
	redirect(w, r, "/users/"+user.ID.String())
}

// DestroySession logs out. It is safe to call without a session.
func (h *Handler) DestroySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gate.SignOut(w, r); err != nil {
		h.log.Warn(ctx, "session not ended cleanly", "error", err)
	}
	if u := auth.CurrentUser(ctx); u != nil {
		h.record(ctx, r, models.ActivitySessionEnded, u.ID, uuid.Nil)
	}
	redirect(w, r, "/")
}
