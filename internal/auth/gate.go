package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/AnshRaj112/salvioris-journal/pkg/logger"
	"github.com/google/uuid"
)

const (
	// LoginPath is where anonymous requests to protected routes go.
	LoginPath = "/login"
	// DeniedPath is where a signed-in user lands after touching an entry
	// that is missing or belongs to someone else.
	DeniedPath = "/journals"
)

// UserFinder resolves a session's user.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// EntryFinder loads entries for ownership checks.
type EntryFinder interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*models.Entry, error)
}

// Decision is the outcome of an authorization check. A denied decision
// carries the redirect target.
type Decision struct {
	Allowed  bool
	Redirect string
	reason   string
}

// Allow permits the action.
func Allow() Decision {
	return Decision{Allowed: true}
}

// DenyRedirect refuses the action and sends the client to target.
func DenyRedirect(target string) Decision {
	return Decision{Redirect: target}
}

// Gate ties the session cookie, the session manager and the user store
// together and makes the ownership decisions for entry mutations.
type Gate struct {
	sessions services.SessionManager
	users    UserFinder
	entries  EntryFinder
	cookies  *CookieCodec
	log      logger.Logger
}

// NewGate returns a Gate. log may be nil.
func NewGate(sessions services.SessionManager, users UserFinder, entries EntryFinder, cookies *CookieCodec, log logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{sessions: sessions, users: users, entries: entries, cookies: cookies, log: log}
}

// Middleware computes the auth State once per request and stores it in the
// request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := g.resolve(r)
		ctx := WithState(r.Context(), state)
		if state.Authenticated() {
			ctx = logger.WithUserID(ctx, state.User.ID.String())
			ctx = logger.WithSessionID(ctx, services.TokenFingerprint(state.token))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) resolve(r *http.Request) State {
	token, ok := g.cookies.Read(r)
	if !ok {
		return Anonymous()
	}
	ctx := r.Context()

	userID, ok := g.sessions.Resolve(ctx, token)
	if !ok {
		return Anonymous()
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			g.log.Error(ctx, "session user lookup failed", "error", err)
		}
		return Anonymous()
	}
	return State{User: user, token: token}
}

// RequireLogin redirects anonymous requests to LoginPath.
func (g *Gate) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated() {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthorizeEntryMutation decides whether state may edit, update or destroy
// the entry. Missing entries and entries owned by others get the same
// denial. The entry is returned only when allowed.
func (g *Gate) AuthorizeEntryMutation(ctx context.Context, state State, entryID uuid.UUID) (*models.Entry, Decision) {
	if !state.Authenticated() {
		return nil, g.deny(ctx, LoginPath, "anonymous", entryID)
	}

	entry, err := g.entries.GetEntry(ctx, entryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			g.log.Error(ctx, "entry lookup failed", "entry_id", entryID.String(), "error", err)
		}
		return nil, g.deny(ctx, DeniedPath, "missing", entryID)
	}

	if !entry.OwnedBy(state.User.ID) {
		return nil, g.deny(ctx, DeniedPath, "not_owner", entryID)
	}
	return entry, Allow()
}

func (g *Gate) deny(ctx context.Context, target, reason string, entryID uuid.UUID) Decision {
	g.log.Info(ctx, "entry mutation denied", "reason", reason, "entry_id", entryID.String())
	d := DenyRedirect(target)
	d.reason = reason
	return d
}

// SignIn starts a session for user and sets the cookie. Any earlier
// session of the same user is invalidated by the session manager.
func (g *Gate) SignIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	token, err := g.sessions.Start(r.Context(), user.ID)
	if err != nil {
		return err
	}
	return g.cookies.Write(w, token)
}

// SignOut ends the current session, if any, and clears the cookie.
func (g *Gate) SignOut(w http.ResponseWriter, r *http.Request) error {
	defer g.cookies.Clear(w)

	token, ok := g.cookies.Read(r)
	if !ok {
		return nil
	}
	return g.sessions.End(r.Context(), token)
}

// Reason is the logged cause of a denial: anonymous, missing or not_owner.
func (d Decision) Reason() string {
	return d.reason
}
