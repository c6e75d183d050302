package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandlers(f *authFixture) *AdminAuthHandlers {
	return &AdminAuthHandlers{Svc: f.svc, Cookies: CookieSettings{Domain: "halayachts.com", Secure: true}}
}

func TestAdminLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	h := newAuthHandlers(f)

	req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    "OWNER@HalaYachts.com",
		"password": testAdminPassword,
	})
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testAdminEmail, user["email"])
	assert.Equal(t, "Owner", user["name"])
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, rec.Body.String(), "plain:")

	ck := findCookie(rec, SessionCookieName)
	require.NotNil(t, ck)
	assert.NotEmpty(t, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, "halayachts.com", ck.Domain)
	assert.Greater(t, ck.MaxAge, 0)
}

func TestAdminLogin_FailuresShareOnePayload(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	h := newAuthHandlers(f)

	attempt := func(source, email, password string) *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"email": email, "password": password})
		req.Header.Set("X-Forwarded-For", source)
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec
	}

	unknown := attempt("10.0.0.1", "nobody@halayachts.com", testAdminPassword)
	wrong := attempt("10.0.0.2", testAdminEmail, "wrong-password")

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)

	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "invalid_credentials", decodeBody(t, unknown)["code"])
	assert.Nil(t, findCookie(unknown, SessionCookieName))
}

func TestAdminLogin_LockoutBlocksCorrectPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t)
	h := newAuthHandlers(f)

	login := func(password string) *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"email": testAdminEmail, "password": password})
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
		rec := httptest.NewRecorder()
		h.Login(rec, req)
		return rec
	}

	for i := range 5 {
		rec := login("wrong")
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := login(testAdminPassword)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeBody(t, rec)["code"])
	assert.Nil(t, findCookie(rec, SessionCookieName))

	// A different source is unaffected.
	req := jsonRequest(t, http.MethodPost, "/api/admin/login", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	req.Header.Set("X-Real-IP", "5.6.7.8")
	other := httptest.NewRecorder()
	h.Login(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestAdminLogin_BadRequests(t *testing.T) {
	f := newAuthFixture(t)
	h := newAuthHandlers(f)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing password", body: map[string]string{"email": testAdminEmail}},
		{name: "empty body", body: nil},
		{name: "malformed json", body: `{"email":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Login(rec, jsonRequest(t, http.MethodPost, "/api/admin/login", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "bad_request", decodeBody(t, rec)["code"])
		})
	}
}

func TestAdminLogout_ExpiresCookie(t *testing.T) {
	f := newAuthFixture(t)
	h := newAuthHandlers(f)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	ck := findCookie(rec, SessionCookieName)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Less(t, ck.MaxAge, 0)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, "halayachts.com", ck.Domain)
}

func TestAdminMe(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedAdmin(t)
	h := newAuthHandlers(f)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
		req.AddCookie(f.sessionCookie(t, admin))
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["authenticated"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, admin.ID, user["id"])
		assert.Equal(t, testAdminEmail, user["email"])
		assert.Equal(t, "admin", user["role"])
	})

	cases := map[string]*http.Cookie{
		"no cookie":        nil,
		"malformed cookie": {Name: SessionCookieName, Value: "not-a-token"},
		"empty cookie":     {Name: SessionCookieName, Value: ""},
	}
	for name, ck := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
			if ck != nil {
				req.AddCookie(ck)
			}
			rec := httptest.NewRecorder()
			h.Me(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
		})
	}
}

func TestAdminMe_TokenExpiresWithClock(t *testing.T) {
	f := newAuthFixture(t)
	admin := f.seedAdmin(t)
	h := newAuthHandlers(f)

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f.tokens.Now = func() time.Time { return now }
	f.tokens.TTL = time.Hour
	ck := f.sessionCookie(t, admin)

	me := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
		req.AddCookie(ck)
		rec := httptest.NewRecorder()
		h.Me(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, me())
	now = now.Add(time.Hour + time.Second)
	assert.Equal(t, http.StatusUnauthorized, me())
}

func TestAdminRegister(t *testing.T) {
	f := newAuthFixture(t)
	h := newAuthHandlers(f)

	register := func(body map[string]string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Register(rec, jsonRequest(t, http.MethodPost, "/api/admin/register", body))
		return rec
	}

	weak := register(map[string]string{"email": testAdminEmail, "password": "short"})
	assert.Equal(t, http.StatusBadRequest, weak.Code)
	assert.Equal(t, "weak_password", decodeBody(t, weak)["code"])

	long := register(map[string]string{"email": testAdminEmail, "password": strings.Repeat("p", 80)})
	assert.Equal(t, http.StatusBadRequest, long.Code)
	longBody := decodeBody(t, long)
	assert.Equal(t, "weak_password", longBody["code"])
	assert.Equal(t, "Password must be at most 72 bytes", longBody["error"])

	rec := register(map[string]string{"email": "Owner@HalaYachts.com", "password": testAdminPassword})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Admin account created. You can now log in.", body["message"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, testAdminEmail, user["email"])
	assert.Equal(t, "Hala Yachts Admin", user["name"])

	again := register(map[string]string{"email": "second@halayachts.com", "password": testAdminPassword})
	assert.Equal(t, http.StatusForbidden, again.Code)
	assert.Equal(t, "already_initialized", decodeBody(t, again)["code"])
}
