package ui

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/client/services"
)

// Authenticator is the part of the session store the modal drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) services.Result
	Register(ctx context.Context, req models.RegisterRequest) services.Result
}

// AuthForm is what the user typed into the modal.
type AuthForm struct {
	Email    string
	Password string
	FullName string
	Username string
}

// ModalState is a snapshot of the modal.
type ModalState struct {
	Open    bool
	Mode    AuthMode
	Loading bool
}

// AuthModal controls the login/registration dialog. Login success closes
// it, registration success switches it to login mode, and failures leave it
// open so the user can correct the input.
type AuthModal struct {
	auth Authenticator

	mu    sync.Mutex
	state ModalState
}

func NewAuthModal(auth Authenticator) *AuthModal {
	return &AuthModal{auth: auth, state: ModalState{Mode: ModeLogin}}
}

// Attach opens the modal for every request published on bus.
func (m *AuthModal) Attach(bus *Bus) (detach func()) {
	return bus.Subscribe(func(_ context.Context, req AuthRequest) {
		m.Open(req.Mode)
	})
}

func (m *AuthModal) Open(mode AuthMode) {
	if !mode.Valid() {
		mode = ModeLogin
	}
	m.mu.Lock()
	m.state.Open = true
	m.state.Mode = mode
	m.mu.Unlock()
}

func (m *AuthModal) Close() {
	m.mu.Lock()
	m.state.Open = false
	m.mu.Unlock()
}

// SwitchMode toggles between login and registration.
func (m *AuthModal) SwitchMode() {
	m.mu.Lock()
	if m.state.Mode == ModeLogin {
		m.state.Mode = ModeRegister
	} else {
		m.state.Mode = ModeLogin
	}
	m.mu.Unlock()
}

func (m *AuthModal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Submit sends form in the current mode. A submit while another one is in
// flight is rejected, which is how double submits are kept away from the
// session store.
func (m *AuthModal) Submit(ctx context.Context, form AuthForm) services.Result {
	m.mu.Lock()
	if m.state.Loading {
		m.mu.Unlock()
		return services.Result{Error: "A request is already in progress"}
	}
	m.state.Loading = true
	mode := m.state.Mode
	m.mu.Unlock()

	var res services.Result
	if mode == ModeRegister {
		res = m.auth.Register(ctx, models.RegisterRequest{
			Email:    strings.TrimSpace(form.Email),
			Password: form.Password,
			FullName: strings.TrimSpace(form.FullName),
			Username: strings.TrimSpace(form.Username),
		})
	} else {
		res = m.auth.Login(ctx, strings.TrimSpace(form.Email), form.Password)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = false
	if res.Success {
		switch mode {
		case ModeLogin:
			m.state.Open = false
		case ModeRegister:
			m.state.Mode = ModeLogin
		}
	}
	return res
}
