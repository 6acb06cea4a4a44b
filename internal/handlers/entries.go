package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/google/uuid"
)

type entryFormPage struct {
	formPage
	Journal *models.Journal
	EntryID uuid.UUID
}

// ownJournal loads the journal named by the journal_id path parameter when
// it belongs to the current user. Anything else redirects to the denied
// page and returns nil.
func (h *Handler) ownJournal(w http.ResponseWriter, r *http.Request) *models.Journal {
	ctx := r.Context()
	journal, err := h.store.GetJournal(ctx, pathID(r, "journal_id"))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.serverError(w, r, err)
		return nil
	}
	if journal == nil || journal.UserID != auth.CurrentUser(ctx).ID {
		h.log.Info(ctx, "entry creation denied", "journal_id", pathID(r, "journal_id").String())
		redirect(w, r, auth.DeniedPath)
		return nil
	}
	return journal
}

// NewEntry renders the entry form for one of the user's journals.
func (h *Handler) NewEntry(w http.ResponseWriter, r *http.Request) {
	journal := h.ownJournal(w, r)
	if journal == nil {
		return
	}
	h.render(w, r, http.StatusOK, "entries_new", entryFormPage{Journal: journal})
}

// CreateEntry stores an entry. The owner is always the current user.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journal := h.ownJournal(w, r)
	if journal == nil {
		return
	}
	user := auth.CurrentUser(ctx)
	title, body := r.PostFormValue("title"), r.PostFormValue("body")

	entry, err := h.store.CreateEntry(ctx, title, body, user.ID, journal.ID)
	if err != nil {
		if verrs, ok := utils.AsValidation(err); ok {
			h.render(w, r, http.StatusUnprocessableEntity, "entries_new", entryFormPage{
				formPage: formPage{Values: map[string]string{"title": title, "body": body}, Errors: verrs},
				Journal:  journal,
			})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			redirect(w, r, auth.DeniedPath)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.record(ctx, r, models.ActivityEntryCreated, user.ID, entry.ID)
	redirect(w, r, "/entries/"+entry.ID.String())
}

type entryPage struct {
	Entry *models.Entry
	Own   bool
}

// ShowEntry is public.
func (h *Handler) ShowEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, err := h.store.GetEntry(ctx, pathID(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	own := false
	if u := auth.CurrentUser(ctx); u != nil {
		own = entry.OwnedBy(u.ID)
	}
	h.render(w, r, http.StatusOK, "entries_show", entryPage{Entry: entry, Own: own})
}

// EditEntry renders the edit form for the entry's owner.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, d := h.gate.AuthorizeEntryMutation(ctx, auth.FromContext(ctx), pathID(r, "id"))
	if !d.Allowed {
		redirect(w, r, d.Redirect)
		return
	}
	h.render(w, r, http.StatusOK, "entries_edit", entryFormPage{
		formPage: formPage{Values: map[string]string{"title": entry.Title, "body": entry.Body}},
		EntryID:  entry.ID,
	})
}

// UpdateEntry changes title and body. Owner and journal never change.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, d := h.gate.AuthorizeEntryMutation(ctx, auth.FromContext(ctx), pathID(r, "id"))
	if !d.Allowed {
		redirect(w, r, d.Redirect)
		return
	}

	fields := models.EntryUpdate{Title: r.PostFormValue("title"), Body: r.PostFormValue("body")}
	updated, err := h.store.UpdateEntry(ctx, entry.ID, fields)
	if err != nil {
		if verrs, ok := utils.AsValidation(err); ok {
			h.render(w, r, http.StatusUnprocessableEntity, "entries_edit", entryFormPage{
				formPage: formPage{Values: map[string]string{"title": fields.Title, "body": fields.Body}, Errors: verrs},
				EntryID:  entry.ID,
			})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			redirect(w, r, auth.DeniedPath)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.record(ctx, r, models.ActivityEntryUpdated, updated.UserID, updated.ID)
	redirect(w, r, "/entries/"+updated.ID.String())
}

// DestroyEntry deletes the entry and returns to its journal.
func (h *Handler) DestroyEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entry, d := h.gate.AuthorizeEntryMutation(ctx, auth.FromContext(ctx), pathID(r, "id"))
	if !d.Allowed {
		redirect(w, r, d.Redirect)
		return
	}

	if err := h.store.DestroyEntry(ctx, entry.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			redirect(w, r, auth.DeniedPath)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.record(ctx, r, models.ActivityEntryDeleted, entry.UserID, entry.ID)
	redirect(w, r, "/journals/"+entry.JournalID.String())
}
