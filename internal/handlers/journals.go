package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
)

// JournalsIndex lists the current user's journals.
func (h *Handler) JournalsIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journals, err := h.store.ListJournalsForUser(ctx, auth.CurrentUser(ctx).ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "journals_index", struct{ Journals []models.Journal }{journals})
}

// NewJournal renders the journal form.
func (h *Handler) NewJournal(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "journals_new", formPage{})
}

// CreateJournal stores a journal owned by the current user.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.CurrentUser(ctx)
	title := r.PostFormValue("title")

	journal, err := h.store.CreateJournal(ctx, title, user.ID)
	if err != nil {
		if verrs, ok := utils.AsValidation(err); ok {
			h.render(w, r, http.StatusUnprocessableEntity, "journals_new", formPage{
				Values: map[string]string{"title": title},
				Errors: verrs,
			})
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.record(ctx, r, models.ActivityJournalCreated, user.ID, journal.ID)
	redirect(w, r, "/users/"+user.ID.String())
}

type journalPage struct {
	Journal *models.Journal
	Entries []models.Entry
	Own     bool
}

// ShowJournal renders a journal and its entries.
func (h *Handler) ShowJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journal, err := h.store.GetJournal(ctx, pathID(r, "journal_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	entries, err := h.store.ListEntriesForJournal(ctx, journal.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "journals_show", journalPage{
		Journal: journal,
		Entries: entries,
		Own:     journal.UserID == auth.CurrentUser(ctx).ID,
	})
}
