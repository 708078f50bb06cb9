package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
)

var errNotStubbed = errors.New("not stubbed")

// stubAPI is an in-process client.AuthAPI whose calls can be held open to
// exercise ordering.
type stubAPI struct {
	mu        sync.Mutex
	token     string
	hooks     []func(context.Context, string)
	lastEmail string

	login   func(ctx context.Context, c models.Credentials) (string, error)
	me      func(ctx context.Context) (*models.User, error)
	meCalls atomic.Int32
}

func newStubAPI() *stubAPI { return &stubAPI{} }

func (a *stubAPI) SetAccessToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

func (a *stubAPI) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *stubAPI) OnUnauthorized(fn func(ctx context.Context, token string)) {
	a.mu.Lock()
	a.hooks = append(a.hooks, fn)
	a.mu.Unlock()
}

func (a *stubAPI) Register(context.Context, models.RegisterRequest) (*models.RegisterResponse, error) {
	return nil, errNotStubbed
}

func (a *stubAPI) Login(ctx context.Context, c models.Credentials) (string, error) {
	a.mu.Lock()
	a.lastEmail = c.Email
	a.mu.Unlock()

	if a.login != nil {
		return a.login(ctx, c)
	}
	return "tok-" + c.Email, nil
}

func (a *stubAPI) RefreshToken(context.Context) (string, error) {
	return "", errNotStubbed
}

func (a *stubAPI) CurrentUser(ctx context.Context) (*models.User, error) {
	a.meCalls.Add(1)
	if a.me != nil {
		return a.me(ctx)
	}
	a.mu.Lock()
	email := a.lastEmail
	a.mu.Unlock()
	return &models.User{ID: "u-" + email, Email: email}, nil
}

func (a *stubAPI) UpdateCurrentUser(context.Context, models.ProfileUpdate) (*models.User, error) {
	return nil, errNotStubbed
}

// memStore is an in-memory metadata.CredentialStore.
type memStore struct {
	mu       sync.Mutex
	token    string
	user     []byte
	loadErr  error
	saveErr  error
	clearErr error
	saves    atomic.Int32
}

func (m *memStore) Load(context.Context) (string, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return "", nil, m.loadErr
	}
	return m.token, append([]byte(nil), m.user...), nil
}

func (m *memStore) Save(_ context.Context, token string, user []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves.Add(1)
	m.token, m.user = token, append([]byte(nil), user...)
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.token, m.user = "", nil
	return nil
}

func (m *memStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
