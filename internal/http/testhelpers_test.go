package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halayachts/hala-api/internal/adapters/ratelimit"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/domain/model"
	mockauth "github.com/halayachts/hala-api/internal/mocks/auth"
	"github.com/halayachts/hala-api/internal/service"
	"github.com/stretchr/testify/require"
)

const (
	testAdminEmail    = "owner@halayachts.com"
	testAdminPassword = "Secret123!"
)

// authFixture wires the real admin auth service over in-memory ports.
type authFixture struct {
	svc    *service.AdminAuthService
	admins *mockauth.MemoryAdminRepository
	tokens *mockauth.MockTokenIssuer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	admins := mockauth.NewMemoryAdminRepository()
	tokens := mockauth.NewMockTokenIssuer()
	limiter := service.NewLoginLimiter(service.LoginLimiterOptions{
		Store:  ratelimit.NewMemoryStore(ratelimit.MemoryStoreOptions{}),
		Policy: service.LoginPolicy{MaxAttempts: 5},
	})
	svc := service.NewAdminAuthService(service.AdminAuthServiceOptions{
		Admins: admins,
		Deps: service.AdminAuthDeps{
			Hasher:  mockauth.PlainHasher{},
			Tokens:  tokens,
			Limiter: limiter,
		},
	})
	return &authFixture{svc: svc, admins: admins, tokens: tokens}
}

func (f *authFixture) seedAdmin(t *testing.T) domainauth.AdminAccount {
	t.Helper()
	a, err := f.svc.SeedAdmin(context.Background(), service.SeedAdminInput{
		Email:    testAdminEmail,
		Password: testAdminPassword,
		Name:     "Owner",
	})
	require.NoError(t, err)
	return *a
}

// sessionCookie mints a valid session for the seeded admin.
func (f *authFixture) sessionCookie(t *testing.T, admin domainauth.AdminAccount) *http.Cookie {
	t.Helper()
	token, _, err := f.tokens.Issue(domainauth.Claims{Subject: admin.ID, Email: admin.Email, Role: admin.Role})
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rdr io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type fakeContacts struct {
	submitFn func(ctx context.Context, req *model.CreateContactRequest) (*model.ContactMessage, error)
	listFn   func(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error)
}

func (f *fakeContacts) Submit(ctx context.Context, req *model.CreateContactRequest) (*model.ContactMessage, error) {
	return f.submitFn(ctx, req)
}

func (f *fakeContacts) List(ctx context.Context, opts model.ContactListOptions) ([]model.ContactMessage, error) {
	return f.listFn(ctx, opts)
}

type fakeBookings struct {
	submitFn func(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	listFn   func(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, model.Pagination, error)
}

func (f *fakeBookings) Submit(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	return f.submitFn(ctx, req)
}

func (f *fakeBookings) List(ctx context.Context, opts model.BookingListOptions) ([]model.Booking, model.Pagination, error) {
	return f.listFn(ctx, opts)
}

type fakeNewsletter struct {
	subscribeFn func(ctx context.Context, req *model.SubscribeRequest) (*model.Subscriber, error)
	statsFn     func(ctx context.Context) (model.SubscriberStats, error)
}

func (f *fakeNewsletter) Subscribe(ctx context.Context, req *model.SubscribeRequest) (*model.Subscriber, error) {
	return f.subscribeFn(ctx, req)
}

func (f *fakeNewsletter) Stats(ctx context.Context) (model.SubscriberStats, error) {
	return f.statsFn(ctx)
}

type fakeYachts struct {
	listFn   func(ctx context.Context) ([]model.Yacht, error)
	createFn func(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error)
}

func (f *fakeYachts) List(ctx context.Context) ([]model.Yacht, error) { return f.listFn(ctx) }

func (f *fakeYachts) Create(ctx context.Context, req *model.CreateYachtRequest) (*model.Yacht, error) {
	return f.createFn(ctx, req)
}
