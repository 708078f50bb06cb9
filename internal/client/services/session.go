// Package services contains application services for the dnahub client.
// This file defines the session store: the single owner of the signed-in
// identity and the bearer token, and of their persisted copy.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/client"
	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dnahub/internal/common"
	"github.com/dmitrijs2005/dnahub/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Toast messages shown for session operations.
const (
	MsgLoginSucceeded      = "Welcome back!"
	MsgLoginFailed         = "Login failed"
	MsgLoginSuperseded     = "Login was superseded by a newer request"
	MsgRegisterSucceeded   = "Account created successfully! Please log in."
	MsgRegisterFailed      = "Registration failed"
	MsgLoggedOut           = "Logged out successfully"
	MsgProfileUpdated      = "Profile updated successfully!"
	MsgProfileUpdateFailed = "Failed to update profile"
	MsgRefreshFailed       = "Failed to refresh session"
	MsgNotAuthenticated    = "Please log in first"
)

// State is where the session is in its login lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is a point-in-time copy of the store state.
type Session struct {
	State State
	Token string
	User  *models.User
}

// IsAuthenticated reports whether s carries a verified user and token.
func (s Session) IsAuthenticated() bool {
	return s.State == Authenticated
}

// Result is what user-facing session operations return instead of an error.
type Result struct {
	Success bool
	Error   string
}

func failed(msg string) Result { return Result{Error: msg} }

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(context.Context, string) {}
func (nopNotifier) Error(context.Context, string)   {}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the logger. The default discards records.
func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *SessionStore) { s.log = l }
}

// WithNotifier sets where toasts go. The default drops them.
func WithNotifier(n Notifier) SessionOption {
	return func(s *SessionStore) { s.notify = n }
}

// WithSessionExpiredHandler registers fn to run after a 401 response has
// torn down an active session.
func WithSessionExpiredHandler(fn func(ctx context.Context)) SessionOption {
	return func(s *SessionStore) { s.onExpired = fn }
}

// WithClock overrides the time source used to check token expiry.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

type listener struct {
	id int
	fn func(Session)
}

// SessionStore holds the current session and mirrors it to a
// metadata.CredentialStore.
//
// Every operation that can change the session takes a sequence number when
// it starts. A result is only applied if no newer operation has started
// since, so a slow response never overwrites a newer one. Logout takes a
// number too, which drops any verification still in flight.
//
// Listeners registered with Subscribe run with the store lock held and must
// not call back into the store.
type SessionStore struct {
	api       client.AuthAPI
	store     metadata.CredentialStore
	log       logging.Logger
	notify    Notifier
	onExpired func(ctx context.Context)
	now       func() time.Time

	mu         sync.Mutex
	session    Session
	settled    Session // last session that was not Authenticating
	seq        uint64
	listeners  []listener
	nextListen int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSessionStore builds an unauthenticated store and installs its 401 hook
// on api. Call Hydrate to restore a persisted session and Close when done.
func NewSessionStore(api client.AuthAPI, store metadata.CredentialStore, opts ...SessionOption) *SessionStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &SessionStore{
		api:    api,
		store:  store,
		log:    logging.Discard(),
		notify: nopNotifier{},
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	api.OnUnauthorized(s.handleUnauthorized)
	return s
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (s *SessionStore) Subscribe(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Hydrate restores a persisted session. A usable record makes the store
// Authenticated right away and starts a background verification. Problems
// with the record are logged and leave the store unauthenticated.
func (s *SessionStore) Hydrate(ctx context.Context) {
	token, raw, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to load saved session", "error", err)
		return
	}
	if token == "" && len(raw) == 0 {
		return
	}

	var user models.User
	switch {
	case token == "" || len(raw) == 0:
		s.log.Warn(ctx, "incomplete saved session, clearing")
		s.discardSaved(ctx)
		return
	case json.Unmarshal(raw, &user) != nil:
		s.log.Warn(ctx, "unreadable saved user record, clearing")
		s.discardSaved(ctx)
		return
	case tokenExpired(token, s.now()):
		s.log.Info(ctx, "saved token has expired, clearing")
		s.discardSaved(ctx)
		return
	}

	s.mu.Lock()
	s.seq++
	s.setLocked(Session{State: Authenticated, Token: token, User: &user})
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.VerifyCurrentUser(s.ctx); err != nil {
			s.log.Info(s.ctx, "saved session rejected", "error", err)
		}
	}()
}

func (s *SessionStore) discardSaved(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
}

// tokenExpired reports whether token is a JWT whose exp claim is not after
// now. The signature is not checked and opaque tokens never expire here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}

// Login exchanges credentials for a token, loads the profile with it and
// only then replaces the session. On failure the previous state is restored.
func (s *SessionStore) Login(ctx context.Context, email, password string) Result {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	next := s.session
	next.State = Authenticating
	s.setLocked(next)
	s.mu.Unlock()

	ctx = withAuthAttempt(ctx)

	token, err := s.api.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return s.loginFailed(ctx, seq, err)
	}
	user, err := s.api.CurrentUser(client.WithAccessToken(ctx, token))
	if err != nil {
		return s.loginFailed(ctx, seq, err)
	}

	if !s.commit(ctx, seq, token, user) {
		return failed(MsgLoginSuperseded)
	}
	s.log.Info(ctx, "login succeeded", "email", user.Email)
	s.notify.Success(ctx, MsgLoginSucceeded)
	return Result{Success: true}
}

// loginFailed restores the last settled session if no newer operation has
// started. An older login still in flight is superseded by this one, so the
// store must not be left Authenticating on its behalf.
func (s *SessionStore) loginFailed(ctx context.Context, seq uint64, err error) Result {
	s.mu.Lock()
	if s.seq == seq {
		s.setLocked(s.settled)
	}
	s.mu.Unlock()

	s.log.Warn(ctx, "login failed", "error", err)
	msg := client.Detail(err, MsgLoginFailed)
	s.notify.Error(ctx, msg)
	return failed(msg)
}

// Register creates an account. It never signs the user in.
func (s *SessionStore) Register(ctx context.Context, req models.RegisterRequest) Result {
	if _, err := s.api.Register(withAuthAttempt(ctx), req); err != nil {
		s.log.Warn(ctx, "registration failed", "email", req.Email, "error", err)
		msg := client.Detail(err, MsgRegisterFailed)
		s.notify.Error(ctx, msg)
		return failed(msg)
	}
	s.log.Info(ctx, "registration succeeded", "email", req.Email)
	s.notify.Success(ctx, MsgRegisterSucceeded)
	return Result{Success: true}
}

// Logout clears the session locally. It makes no network call and is safe
// to call repeatedly.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.session.Token != ""
	s.resetLocked(ctx)
	s.mu.Unlock()

	if wasAuthenticated {
		s.notify.Success(ctx, MsgLoggedOut)
	}
}

// VerifyCurrentUser re-reads the profile with the stored token. Any failure
// other than cancellation ends the session.
func (s *SessionStore) VerifyCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	token := s.session.Token
	if token == "" {
		s.mu.Unlock()
		return common.ErrorNotAuthenticated
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	user, err := s.api.CurrentUser(client.WithAccessToken(ctx, token))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.mu.Lock()
		if s.seq == seq {
			s.resetLocked(ctx)
		}
		s.mu.Unlock()
		return fmt.Errorf("verify session: %w", err)
	}

	s.commit(ctx, seq, token, user)
	return nil
}

// UpdateProfile sends a partial profile update and caches the returned user.
func (s *SessionStore) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) Result {
	s.mu.Lock()
	token := s.session.Token
	if s.session.State != Authenticated {
		s.mu.Unlock()
		s.notify.Error(ctx, MsgNotAuthenticated)
		return failed(MsgNotAuthenticated)
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	user, err := s.api.UpdateCurrentUser(client.WithAccessToken(ctx, token), upd)
	if err != nil {
		s.log.Warn(ctx, "profile update failed", "error", err)
		msg := client.Detail(err, MsgProfileUpdateFailed)
		s.notify.Error(ctx, msg)
		return failed(msg)
	}

	s.commit(ctx, seq, token, user)
	s.notify.Success(ctx, MsgProfileUpdated)
	return Result{Success: true}
}

// RefreshToken swaps the stored token for a fresh one. The profile is kept.
func (s *SessionStore) RefreshToken(ctx context.Context) Result {
	s.mu.Lock()
	token, user := s.session.Token, s.session.User
	if s.session.State != Authenticated {
		s.mu.Unlock()
		s.notify.Error(ctx, MsgNotAuthenticated)
		return failed(MsgNotAuthenticated)
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	fresh, err := s.api.RefreshToken(client.WithAccessToken(ctx, token))
	if err != nil {
		s.log.Warn(ctx, "token refresh failed", "error", err)
		msg := client.Detail(err, MsgRefreshFailed)
		s.notify.Error(ctx, msg)
		return failed(msg)
	}

	if !s.commit(ctx, seq, fresh, user) {
		return failed(MsgRefreshFailed)
	}
	return Result{Success: true}
}

// Wait blocks until background verification started by Hydrate is done.
func (s *SessionStore) Wait() {
	s.wg.Wait()
}

// Close cancels background work and waits for it.
func (s *SessionStore) Close() {
	s.cancel()
	s.wg.Wait()
}

// handleUnauthorized ends the session when the server rejects its token.
// A 401 for any other token, such as a verification of a token that a newer
// login has since replaced, is stale and ignored.
func (s *SessionStore) handleUnauthorized(ctx context.Context, token string) {
	if isAuthAttempt(ctx) {
		return
	}

	s.mu.Lock()
	if s.session.Token == "" || token != s.session.Token {
		s.mu.Unlock()
		s.log.Debug(ctx, "ignoring 401 for a token that is not current")
		return
	}
	s.resetLocked(ctx)
	s.mu.Unlock()

	s.log.Warn(ctx, "session rejected by server, signed out")
	if s.onExpired != nil {
		s.onExpired(ctx)
	}
}

// commit applies an authenticated session if seq is still current and
// persists it. It reports whether the session was applied.
func (s *SessionStore) commit(ctx context.Context, seq uint64, token string, user *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.log.Debug(ctx, "discarding stale session result", "seq", seq, "latest", s.seq)
		return false
	}

	raw, err := json.Marshal(user)
	if err == nil {
		err = s.store.Save(context.WithoutCancel(ctx), token, raw)
	}
	if err != nil {
		s.log.Error(ctx, "failed to save session", "error", err)
	}

	s.setLocked(Session{State: Authenticated, Token: token, User: user})
	return true
}

// resetLocked drops the session from memory and storage. Storage errors are
// only logged.
func (s *SessionStore) resetLocked(ctx context.Context) {
	s.seq++
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.log.Error(ctx, "failed to clear saved session", "error", err)
	}
	s.setLocked(Session{})
}

func (s *SessionStore) setLocked(next Session) {
	if next.Token != s.session.Token {
		s.api.SetAccessToken(next.Token)
	}
	changed := next.State != s.session.State || next.Token != s.session.Token || next.User != s.session.User
	s.session = next
	if next.State != Authenticating {
		s.settled = next
	}
	if !changed {
		return
	}

	snap := s.snapshotLocked()
	for _, l := range s.listeners {
		l.fn(snap)
	}
}

func (s *SessionStore) snapshotLocked() Session {
	snap := s.session
	if snap.User != nil {
		u := *snap.User
		u.Skills = append([]string(nil), u.Skills...)
		snap.User = &u
	}
	return snap
}

type authAttemptKey struct{}

// withAuthAttempt marks requests that present credentials rather than a
// session. A 401 from them means bad credentials, not an expired session.
func withAuthAttempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, authAttemptKey{}, true)
}

func isAuthAttempt(ctx context.Context) bool {
	v, _ := ctx.Value(authAttemptKey{}).(bool)
	return v
}
