package ui

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginRes    services.Result
	registerRes services.Result

	lastEmail    string
	lastRegister models.RegisterRequest
	block        chan struct{}
	entered      chan struct{}
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) services.Result {
	f.lastEmail = email
	if f.block != nil {
		close(f.entered)
		<-f.block
	}
	return f.loginRes
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) services.Result {
	f.lastRegister = req
	return f.registerRes
}

func TestBus_DeliversInOrderAndCancels(t *testing.T) {
	bus := NewBus()
	var got []string

	cancelA := bus.Subscribe(func(_ context.Context, r AuthRequest) { got = append(got, "a:"+string(r.Mode)) })
	bus.Subscribe(func(_ context.Context, r AuthRequest) { got = append(got, "b:"+string(r.Mode)) })

	bus.RequestAuth(context.Background(), ModeRegister)
	cancelA()
	cancelA()
	bus.RequestAuth(context.Background(), "bogus")

	assert.Equal(t, []string{"a:register", "b:register", "b:login"}, got)
}

func TestBus_HandlerMaySubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(func(context.Context, AuthRequest) {
		calls++
		bus.Subscribe(func(context.Context, AuthRequest) { calls++ })
	})

	require.NotPanics(t, func() { bus.RequestAuth(context.Background(), ModeLogin) })
	assert.Equal(t, 1, calls)
}

func TestAuthModal_OpenedByBus(t *testing.T) {
	bus := NewBus()
	m := NewAuthModal(&fakeAuth{})
	detach := m.Attach(bus)

	assert.Equal(t, ModalState{Mode: ModeLogin}, m.State())

	bus.RequestAuth(context.Background(), ModeRegister)
	assert.Equal(t, ModalState{Open: true, Mode: ModeRegister}, m.State())

	m.Close()
	detach()
	bus.RequestAuth(context.Background(), ModeLogin)
	assert.False(t, m.State().Open)
}

func TestAuthModal_LoginSuccessCloses(t *testing.T) {
	auth := &fakeAuth{loginRes: services.Result{Success: true}}
	m := NewAuthModal(auth)
	m.Open(ModeLogin)

	res := m.Submit(context.Background(), AuthForm{Email: " ada@example.com ", Password: "pw"})
	require.True(t, res.Success)
	assert.Equal(t, "ada@example.com", auth.lastEmail)
	assert.Equal(t, ModalState{Open: false, Mode: ModeLogin}, m.State())
}

func TestAuthModal_LoginFailureStaysOpen(t *testing.T) {
	m := NewAuthModal(&fakeAuth{loginRes: services.Result{Error: "Incorrect email or password"}})
	m.Open(ModeLogin)

	res := m.Submit(context.Background(), AuthForm{Email: "a@example.com", Password: "x"})
	assert.Equal(t, "Incorrect email or password", res.Error)
	assert.Equal(t, ModalState{Open: true, Mode: ModeLogin}, m.State())
}

func TestAuthModal_RegisterSuccessSwitchesToLogin(t *testing.T) {
	auth := &fakeAuth{registerRes: services.Result{Success: true}}
	m := NewAuthModal(auth)
	m.Open(ModeRegister)

	res := m.Submit(context.Background(), AuthForm{Email: "n@example.com", Password: "pw", FullName: " New ", Username: "new"})
	require.True(t, res.Success)
	assert.Equal(t, models.RegisterRequest{Email: "n@example.com", Password: "pw", FullName: "New", Username: "new"}, auth.lastRegister)
	assert.Equal(t, ModalState{Open: true, Mode: ModeLogin}, m.State())
}

func TestAuthModal_RegisterFailureKeepsMode(t *testing.T) {
	m := NewAuthModal(&fakeAuth{registerRes: services.Result{Error: "Email already registered"}})
	m.Open(ModeRegister)

	m.Submit(context.Background(), AuthForm{Email: "n@example.com"})
	assert.Equal(t, ModalState{Open: true, Mode: ModeRegister}, m.State())
}

func TestAuthModal_RejectsDoubleSubmit(t *testing.T) {
	auth := &fakeAuth{
		loginRes: services.Result{Success: true},
		block:    make(chan struct{}),
		entered:  make(chan struct{}),
	}
	m := NewAuthModal(auth)
	m.Open(ModeLogin)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Submit(context.Background(), AuthForm{Email: "a@example.com"})
	}()
	<-auth.entered

	assert.True(t, m.State().Loading)
	res := m.Submit(context.Background(), AuthForm{Email: "a@example.com"})
	assert.False(t, res.Success)

	close(auth.block)
	wg.Wait()
	assert.False(t, m.State().Loading)
}

func TestAuthModal_SwitchMode(t *testing.T) {
	m := NewAuthModal(&fakeAuth{})
	m.SwitchMode()
	assert.Equal(t, ModeRegister, m.State().Mode)
	m.SwitchMode()
	assert.Equal(t, ModeLogin, m.State().Mode)
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)

	n.Success(context.Background(), "Welcome back!")
	n.Error(context.Background(), "Login failed")

	assert.Equal(t, "✓ Welcome back!\n✗ Login failed\n", buf.String())
}

var _ services.Notifier = (*WriterNotifier)(nil)
var _ Authenticator = (*services.SessionStore)(nil)
