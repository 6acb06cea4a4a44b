package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const flashSessionName = "journal_flash"

// FlashStore carries one-shot messages across a redirect in a signed cookie.
type FlashStore struct {
	store *sessions.CookieStore
}

// NewFlashStore signs flash cookies with secret. An empty secret uses a
// random key, so flashes do not survive a restart.
func NewFlashStore(secret string, secure bool) *FlashStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store}
}

// Add queues msg for the next rendered page. Must be called before the
// response header is written.
func (f *FlashStore) Add(w http.ResponseWriter, r *http.Request, msg string) error {
	// A cookie from an old key fails to decode; Get still returns a fresh session.
	s, _ := f.store.Get(r, flashSessionName)
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save flash: %w", err)
	}
	return nil
}

// Pop returns and clears pending messages. Undecodable cookies yield no
// messages and no error.
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) ([]string, error) {
	s, err := f.store.Get(r, flashSessionName)
	if err != nil {
		return nil, nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	if err := s.Save(r, w); err != nil {
		return nil, fmt.Errorf("clear flash: %w", err)
	}

	msgs := make([]string, 0, len(raw))
	for _, m := range raw {
		if str, ok := m.(string); ok {
			msgs = append(msgs, str)
		}
	}
	return msgs, nil
}

// addFlash queues msg, logging instead of failing the request when the
// cookie cannot be written.
func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	if err := h.flash.Add(w, r, msg); err != nil {
		h.log.Warn(r.Context(), "flash not saved", "error", err)
	}
}

func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	msgs, err := h.flash.Pop(w, r)
	if err != nil {
		h.log.Warn(r.Context(), "flash not cleared", "error", err)
	}
	return msgs
}
