package auth

import (
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "journal_session"

// CookieCodec signs, and optionally encrypts, the session cookie.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

// NewCookieCodec builds a codec. An empty hashKey gets a random one, which
// invalidates cookies on restart. A non-empty blockKey enables encryption.
func NewCookieCodec(hashKey, blockKey string, maxAge time.Duration, secure bool) *CookieCodec {
	hk := []byte(hashKey)
	if len(hk) == 0 {
		hk = securecookie.GenerateRandomKey(64)
	}
	var bk []byte
	if blockKey != "" {
		sum := sha256.Sum256([]byte(blockKey))
		bk = sum[:]
	}

	sc := securecookie.New(hk, bk)
	sc.MaxAge(int(maxAge.Seconds()))
	return &CookieCodec{sc: sc, maxAge: maxAge, secure: secure}
}

// Write sets the session cookie to token.
func (c *CookieCodec) Write(w http.ResponseWriter, token string) error {
	encoded, err := c.sc.Encode(SessionCookieName, token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the token from the request cookie. Missing or tampered
// cookies return false.
func (c *CookieCodec) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var token string
	if err := c.sc.Decode(SessionCookieName, cookie.Value, &token); err != nil {
		return "", false
	}
	return token, token != ""
}

// Clear expires the session cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
