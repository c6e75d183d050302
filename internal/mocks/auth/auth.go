package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/halayachts/hala-api/internal/data"
	domainauth "github.com/halayachts/hala-api/internal/domain/auth"
	"github.com/halayachts/hala-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AdminRepository = (*MemoryAdminRepository)(nil)
	_ ports.PasswordHasher  = PlainHasher{}
	_ ports.TokenIssuer     = (*MockTokenIssuer)(nil)
)

// MemoryAdminRepository is an in-memory admin store that enforces the same
// uniqueness rules as the Postgres repository.
type MemoryAdminRepository struct {
	// Err, when set, is returned by every method.
	Err error

	mu        sync.Mutex
	admins    map[string]*domainauth.AdminAccount
	bootstrap string
	calls     int
	now       func() time.Time
}

// NewMemoryAdminRepository creates an empty repository.
func NewMemoryAdminRepository() *MemoryAdminRepository {
	return &MemoryAdminRepository{
		admins: make(map[string]*domainauth.AdminAccount),
		now:    time.Now,
	}
}

// Calls returns how many repository methods were invoked.
func (m *MemoryAdminRepository) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MemoryAdminRepository) enter() error {
	m.calls++
	return m.Err
}

func (m *MemoryAdminRepository) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	return len(m.admins), nil
}

func (m *MemoryAdminRepository) GetActiveByEmail(_ context.Context, email string) (*domainauth.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, a := range m.admins {
		if a.Email == email && a.IsActive {
			out := *a
			return &out, nil
		}
	}
	return nil, data.ErrAdminNotFound
}

func (m *MemoryAdminRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	for _, a := range m.admins {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryAdminRepository) Create(_ context.Context, in ports.NewAdmin) (*domainauth.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	if in.Bootstrap && m.bootstrap != "" {
		return nil, data.ErrAdminAlreadyBootstrapped
	}
	for _, a := range m.admins {
		if a.Email == in.Email {
			return nil, data.ErrAdminEmailExists
		}
	}

	now := m.now().UTC()
	name := in.Name
	a := &domainauth.AdminAccount{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         &name,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.admins[a.ID] = a
	if in.Bootstrap {
		m.bootstrap = a.ID
	}
	out := *a
	return &out, nil
}

func (m *MemoryAdminRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	a, ok := m.admins[id]
	if !ok {
		return data.ErrAdminNotFound
	}
	a.LastLoginAt = &at
	return nil
}

func (m *MemoryAdminRepository) List(_ context.Context) ([]domainauth.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := make([]domainauth.AdminAccount, 0, len(m.admins))
	for _, a := range m.admins {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Put stores a fully formed account, bypassing uniqueness checks.
func (m *MemoryAdminRepository) Put(a domainauth.AdminAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.admins[a.ID] = &a
}

// Get returns the stored account by id.
func (m *MemoryAdminRepository) Get(id string) (domainauth.AdminAccount, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return domainauth.AdminAccount{}, false
	}
	return *a, true
}

// PlainHasher is a fast, insecure hasher for tests: the digest is "plain:" + password.
type PlainHasher struct {
	// Fail makes Hash return an error.
	Fail bool
}

const plainPrefix = "plain:"

func (h PlainHasher) Hash(plain string) (string, error) {
	if h.Fail {
		return "", errors.New("hash failed")
	}
	return plainPrefix + plain, nil
}

func (PlainHasher) Verify(plain, digest string) bool {
	return strings.HasPrefix(digest, plainPrefix) && digest[len(plainPrefix):] == plain
}

// ErrInvalidToken is returned by MockTokenIssuer for unknown tokens.
var ErrInvalidToken = errors.New("invalid token")

// MockTokenIssuer issues opaque tokens and remembers their claims.
type MockTokenIssuer struct {
	IssueFunc  func(domainauth.Claims) (string, time.Time, error)
	VerifyFunc func(string) (domainauth.Claims, error)

	// TTL is applied to issued tokens; zero means one hour.
	TTL time.Duration
	Now func() time.Time

	mu     sync.Mutex
	issued map[string]domainauth.Claims
	seq    int
}

// NewMockTokenIssuer creates an issuer using the wall clock.
func NewMockTokenIssuer() *MockTokenIssuer {
	return &MockTokenIssuer{issued: make(map[string]domainauth.Claims)}
}

func (m *MockTokenIssuer) clock() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockTokenIssuer) Issue(c domainauth.Claims) (string, time.Time, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.issued == nil {
		m.issued = make(map[string]domainauth.Claims)
	}

	ttl := m.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	m.seq++
	c.IssuedAt = m.clock()
	c.ExpiresAt = c.IssuedAt.Add(ttl)
	token := fmt.Sprintf("token-%d-%s", m.seq, c.Subject)
	m.issued[token] = c
	return token, c.ExpiresAt, nil
}

func (m *MockTokenIssuer) Verify(token string) (domainauth.Claims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.issued[token]
	if !ok || !m.clock().Before(c.ExpiresAt) {
		return domainauth.Claims{}, ErrInvalidToken
	}
	return c, nil
}
