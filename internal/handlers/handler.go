package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/salvioris-journal/internal/auth"
	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/AnshRaj112/salvioris-journal/pkg/clientip"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/AnshRaj112/salvioris-journal/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler holds the request handlers' collaborators. Handlers only
// orchestrate: the gate decides, the repository persists, the renderer
// draws.
type Handler struct {
	users    *services.UserService
	store    *repository.Store
	gate     *auth.Gate
	views    *Renderer
	flash    *FlashStore
	activity services.ActivityRecorder
	log      logger.Logger
}

// Deps lists what New needs. Activity and Log may be nil.
type Deps struct {
	Users    *services.UserService
	Store    *repository.Store
	Gate     *auth.Gate
	Views    *Renderer
	Flash    *FlashStore
	Activity services.ActivityRecorder
	Log      logger.Logger
}

func New(d Deps) *Handler {
	if d.Activity == nil {
		d.Activity = services.NopActivity{}
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	return &Handler{
		users:    d.Users,
		store:    d.Store,
		gate:     d.Gate,
		views:    d.Views,
		flash:    d.Flash,
		activity: d.Activity,
		log:      d.Log,
	}
}

// formPage backs every form template.
type formPage struct {
	Values map[string]string
	Errors utils.ValidationErrors
}

// pathID parses a uuid path parameter. Malformed ids come back as uuid.Nil,
// which never matches a record.
func pathID(r *http.Request, name string) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) record(ctx context.Context, r *http.Request, kind models.ActivityKind, userID, subjectID uuid.UUID) {
	a := models.Activity{
		Kind:      kind,
		UserID:    userID.String(),
		IPAddress: clientip.RealClientIP(r),
	}
	if subjectID != uuid.Nil {
		a.SubjectID = subjectID.String()
	}
	h.activity.Record(ctx, a)
}

// Health reports liveness and database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.store.DB().PingContext(r.Context()); err != nil {
		h.log.Warn(r.Context(), "health check: database unreachable", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable"))
		return
	}
	w.Write([]byte("OK"))
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", nil)
}
