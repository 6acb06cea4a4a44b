package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/google/uuid"
)

// UsersIndex lists every user.
func (h *Handler) UsersIndex(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "users_index", struct{ Users []models.User }{users})
}

// NewUser renders the registration form.
func (h *Handler) NewUser(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "users_new", formPage{})
}

// CreateUser registers a user and signs them in.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(r.PostFormValue("name"))
	password := r.PostFormValue("password")

	user, err := h.users.Register(ctx, name, password)
	if err != nil {
		page := formPage{Values: map[string]string{"name": name}}
		if verrs, ok := utils.AsValidation(err); ok {
			page.Errors = verrs
		} else if errors.Is(err, services.ErrDuplicateName) {
			page.Errors = utils.ValidationErrors{{Field: "name", Message: "Name has already been taken"}}
		} else {
			h.serverError(w, r, err)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, "users_new", page)
		return
	}
	h.record(ctx, r, models.ActivityUserRegistered, user.ID, user.ID)

	if err := h.gate.SignIn(w, r, user); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.record(ctx, r, models.ActivitySessionStarted, user.ID, uuid.Nil)
	h.addFlash(w, r, "Welcome, "+user.Name+"!")
	redirect(w, r, "/users/"+user.ID.String())
}

type userPage struct {
	User     *models.User
	Journals []models.Journal
	Own      bool
}

// ShowUser renders a profile with the user's journals.
func (h *Handler) ShowUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.FindByID(ctx, pathID(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	journals, err := h.store.ListJournalsForUser(ctx, user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	current := auth.CurrentUser(ctx)
	h.render(w, r, http.StatusOK, "users_show", userPage{
		User:     user,
		Journals: journals,
		Own:      current != nil && current.ID == user.ID,
	})
}
