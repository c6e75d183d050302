package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/service"
)

// SessionIntrospector verifies a session token.
type SessionIntrospector interface {
	Introspect(ctx context.Context, token string) service.Introspection
}

// AdminAuthServiceInterface defines the admin auth operations used by the handlers.
type AdminAuthServiceInterface interface {
	SessionIntrospector
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context)
	RegisterInitialAdmin(ctx context.Context, in service.RegisterInput) (*domainauth.AdminAccount, error)
}

// AdminAuthHandlers provides HTTP handlers for admin authentication.
type AdminAuthHandlers struct {
	Svc     AdminAuthServiceInterface
	Cookies CookieSettings
	Errors  ErrorOptions
	Logger  *slog.Logger
}

func (h *AdminAuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	User    domainauth.PublicProfile `json:"user"`
}

// Login verifies credentials and sets the session cookie.
// POST /api/admin/login.
func (h *AdminAuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.Login(r.Context(), service.LoginInput{
		SourceKey: SourceKey(r),
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}

	h.Cookies.setSessionCookie(w, res.Token, res.ExpiresAt)
	WriteJSON(w, http.StatusOK, loginResponse{Success: true, Message: "Login successful", User: res.Profile})
}

// Logout expires the session cookie. It always succeeds.
// POST /api/admin/logout.
func (h *AdminAuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Svc.Logout(r.Context())
	h.Cookies.clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, envelope{Success: true})
}

type meResponse struct {
	Authenticated bool                 `json:"authenticated"`
	User          *domainauth.Identity `json:"user,omitempty"`
}

// Me reports the current admin identity.
// GET /api/admin/me.
func (h *AdminAuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	res := h.Svc.Introspect(r.Context(), sessionToken(r))
	if !res.Authenticated {
		WriteJSON(w, http.StatusUnauthorized, meResponse{Authenticated: false})
		return
	}
	WriteJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &res.Identity})
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type registeredAdmin struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type registerResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    registeredAdmin `json:"user"`
}

// Register creates the first admin account. Closed once any admin exists.
// POST /api/admin/register.
func (h *AdminAuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	account, err := h.Svc.RegisterInitialAdmin(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		WriteAppError(w, err, h.Errors)
		return
	}

	h.logger().InfoContext(r.Context(), "admin registered via api", "admin_id", account.ID)
	WriteJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "Admin account created. You can now log in.",
		User:    registeredAdmin{Email: account.Email, Name: account.DisplayName()},
	})
}
