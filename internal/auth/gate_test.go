package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
	"github.com/AnshRaj112/salvioris-journal/internal/repository"
	"github.com/AnshRaj112/salvioris-journal/internal/services"
	"github.com/google/uuid"
)

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeEntries map[uuid.UUID]*models.Entry

func (f fakeEntries) GetEntry(_ context.Context, id uuid.UUID) (*models.Entry, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

type fixture struct {
	gate     *Gate
	sessions *services.MemorySessionManager
	owner    *models.User
	other    *models.User
	entry    *models.Entry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := &models.User{ID: uuid.New(), Name: "Garrett"}
	other := &models.User{ID: uuid.New(), Name: "Alice"}
	entry := &models.Entry{ID: uuid.New(), JournalID: uuid.New(), UserID: owner.ID, Title: "Bald eagle"}

	sessions := services.NewMemorySessionManager(services.MemorySessionOptions{TTL: time.Hour})
	t.Cleanup(func() { sessions.Close() })

	gate := NewGate(
		sessions,
		fakeUsers{owner.ID: owner, other.ID: other},
		fakeEntries{entry.ID: entry},
		NewCookieCodec("test-hash-key", "test-block-key", time.Hour, false),
		nil,
	)
	return &fixture{gate: gate, sessions: sessions, owner: owner, other: other, entry: entry}
}

// signIn returns the cookie a browser would send after logging in as u.
func (f *fixture) signIn(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := f.gate.SignIn(rec, httptest.NewRequest("POST", "/sessions", nil), u); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("unexpected cookies %v", cookies)
	}
	return cookies[0]
}

func (f *fixture) stateFor(cookie *http.Cookie) State {
	var got State
	h := f.gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	req := httptest.NewRequest("GET", "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestMiddlewareResolvesSession(t *testing.T) {
	f := newFixture(t)

	if f.stateFor(nil).Authenticated() {
		t.Error("no cookie should be anonymous")
	}

	cookie := f.signIn(t, f.owner)
	state := f.stateFor(cookie)
	if !state.Authenticated() || state.User.ID != f.owner.ID {
		t.Fatalf("expected owner, got %+v", state)
	}

	tampered := *cookie
	tampered.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
	if f.stateFor(&tampered).Authenticated() {
		t.Error("tampered cookie authenticated")
	}
}

func TestMiddlewareUnknownUserIsAnonymous(t *testing.T) {
	f := newFixture(t)
	ghost := &models.User{ID: uuid.New(), Name: "ghost"}
	cookie := f.signIn(t, ghost)

	if f.stateFor(cookie).Authenticated() {
		t.Error("session for a deleted user authenticated")
	}
}

func TestSignOutEndsSession(t *testing.T) {
	f := newFixture(t)
	cookie := f.signIn(t, f.owner)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	if err := f.gate.SignOut(rec, req); err != nil {
		t.Fatal(err)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("cookie not cleared: %v", cleared)
	}
	if f.stateFor(cookie).Authenticated() {
		t.Error("old cookie still authenticates")
	}

	// signing out without a session is fine
	if err := f.gate.SignOut(httptest.NewRecorder(), httptest.NewRequest("GET", "/logout", nil)); err != nil {
		t.Error(err)
	}
}

func TestRequireLogin(t *testing.T) {
	f := newFixture(t)
	protected := f.gate.Middleware(f.gate.RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest("GET", "/journals", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath {
		t.Errorf("anonymous: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest("GET", "/journals", nil)
	req.AddCookie(f.signIn(t, f.owner))
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("signed in: %d", rec.Code)
	}
}

func TestAuthorizeEntryMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		state    State
		entryID  uuid.UUID
		allowed  bool
		redirect string
		reason   string
	}{
		{"anonymous", Anonymous(), f.entry.ID, false, LoginPath, "anonymous"},
		{"missing entry", State{User: f.owner}, uuid.New(), false, DeniedPath, "missing"},
		{"other user", State{User: f.other}, f.entry.ID, false, DeniedPath, "not_owner"},
		{"owner", State{User: f.owner}, f.entry.ID, true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, d := f.gate.AuthorizeEntryMutation(ctx, tt.state, tt.entryID)
			if d.Allowed != tt.allowed || d.Redirect != tt.redirect || d.Reason() != tt.reason {
				t.Errorf("decision = %+v (%s)", d, d.Reason())
			}
			if tt.allowed && (entry == nil || entry.ID != f.entry.ID) {
				t.Errorf("allowed decision without entry")
			}
			if !tt.allowed && entry != nil {
				t.Errorf("denied decision leaked entry")
			}
		})
	}
}

func TestCookieAttributes(t *testing.T) {
	c := NewCookieCodec("", "", time.Hour, true)
	rec := httptest.NewRecorder()
	if err := c.Write(rec, "tok"); err != nil {
		t.Fatal(err)
	}
	ck := rec.Result().Cookies()[0]
	if !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
		t.Errorf("cookie attributes: %+v", ck)
	}
	if ck.Value == "tok" {
		t.Error("token stored unsigned")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: ck.Value})
	if tok, ok := c.Read(req); !ok || tok != "tok" {
		t.Errorf("read back %q %v", tok, ok)
	}
}
