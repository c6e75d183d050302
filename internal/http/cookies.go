package httpx

import (
	"net/http"
	"time"
)

// SessionCookieName carries the signed admin session token.
const SessionCookieName = "hala_admin_token"

// CookieSettings holds the attributes shared by every session cookie write.
// Logout must reuse them so browsers overwrite the original cookie.
type CookieSettings struct {
	Domain string
	Secure bool
}

func (c CookieSettings) base() http.Cookie {
	return http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// setSessionCookie writes the token with a max-age matching its expiry.
func (c CookieSettings) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	ck := c.base()
	ck.Value = token
	ck.MaxAge = int(time.Until(expiresAt).Seconds())
	if ck.MaxAge < 1 {
		ck.MaxAge = 1
	}
	ck.Expires = expiresAt.UTC()
	http.SetCookie(w, &ck)
}

// clearSessionCookie expires the session cookie immediately.
func (c CookieSettings) clearSessionCookie(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(w, &ck)
}

func sessionToken(r *http.Request) string {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
