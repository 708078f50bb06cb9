// Package fakeapi is an in-memory stand-in for the community REST API,
// served over httptest for package tests.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var signingKey = []byte("fakeapi-test-key")

type account struct {
	user     models.User
	password string
}

// Request is a recorded incoming call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          []byte
}

type failure struct {
	status int
	detail string
}

type Server struct {
	*httptest.Server

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	mu          sync.Mutex
	accounts    map[string]*account
	tokens      map[string]string
	subscribers map[string]bool
	contacts    []models.ContactMessage
	events      []models.Event
	posts       []models.BlogPost
	projects    []models.Project
	requests    []Request
	failures    map[string][]failure
	gates       map[string]chan struct{}
}

// New starts a server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		TokenTTL:    time.Hour,
		accounts:    map[string]*account{},
		tokens:      map[string]string{},
		subscribers: map[string]bool{},
		failures:    map[string][]failure{},
		gates:       map[string]chan struct{}{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.gate, s.injectFailures)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Message: "DNA Community API is running!"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/me", s.requireUser(s.handleMe))
		r.Post("/refresh", s.requireUser(s.handleRefresh))
	})
	r.Put("/api/users/me", s.requireUser(s.handleUpdateMe))

	r.Get("/api/events", s.handleEvents)
	r.Get("/api/blog", s.handleBlog)
	r.Get("/api/projects", s.handleProjects)

	r.Post("/api/newsletter/subscribe", s.handleSubscribe)
	r.Post("/api/newsletter/unsubscribe", s.handleUnsubscribe)
	r.Post("/api/contact", s.handleContact)

	return r
}

// AddUser creates an account directly.
func (s *Server) AddUser(email, password, fullName string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{ID: uuid.NewString(), Email: email, FullName: fullName, IsActive: true, Role: models.RoleMember}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueToken mints a valid token for an existing account.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email, s.TokenTTL)
}

// IssueExpiredToken mints a token whose exp claim is in the past.
func (s *Server) IssueExpiredToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email, -time.Minute)
}

func (s *Server) issueLocked(email string, ttl time.Duration) string {
	token, err := GenerateToken(email, signingKey, ttl)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = email
	return token
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = map[string]string{}
	s.mu.Unlock()
}

// FailNext makes the next call to method+path answer with status/detail.
func (s *Server) FailNext(method, path string, status int, detail string) {
	s.mu.Lock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, detail: detail})
	s.mu.Unlock()
}

// Hold blocks calls to method+path until the returned release is invoked.
func (s *Server) Hold(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[method+" "+path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// HoldToken is Hold restricted to calls whose bearer token is token.
func (s *Server) HoldToken(method, path, token string) (release func()) {
	return s.Hold(method, path+"|"+token)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns how many calls hit method+path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) Contacts() []models.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ContactMessage(nil), s.contacts...)
}

func (s *Server) Subscribed(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribers[email]
}

func (s *Server) AddEvents(events ...models.Event) {
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
}

func (s *Server) AddPosts(posts ...models.BlogPost) {
	s.mu.Lock()
	s.posts = append(s.posts, posts...)
	s.mu.Unlock()
}

func (s *Server) AddProjects(projects ...models.Project) {
	s.mu.Lock()
	s.projects = append(s.projects, projects...)
	s.mu.Unlock()
}

// middleware

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		ch := s.gates[key]
		if ch == nil && token != "" {
			ch = s.gates[key+"|"+token]
		}
		s.mu.Unlock()
		if ch != nil {
			select {
			case <-ch:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		queue := s.failures[key]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, acc *account)

func (s *Server) requireUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		email, err := EmailFromToken(token, signingKey)

		s.mu.Lock()
		_, known := s.tokens[token]
		acc := s.accounts[email]
		s.mu.Unlock()

		if err != nil || !known || acc == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, acc)
	}
}

// handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeFieldError(w, "value is not a valid email address")
		return
	}
	if req.Password == "" || req.FullName == "" {
		writeFieldError(w, "field required")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := models.User{ID: uuid.NewString(), Email: req.Email, FullName: req.FullName, Username: req.Username, IsActive: true, Role: models.RoleMember}
	s.accounts[req.Email] = &account{user: u, password: req.Password}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.RegisterResponse{Message: "User registered successfully", UserID: u.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	token := s.issueLocked(creds.Email, s.TokenTTL)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.Lock()
	u := acc.user
	s.mu.Unlock()
	writeUser(w, u)
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.Lock()
	token := s.issueLocked(acc.user.Email, s.TokenTTL)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, acc *account) {
	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	if upd.FullName != nil {
		acc.user.FullName = *upd.FullName
	}
	if upd.Bio != nil {
		acc.user.Bio = *upd.Bio
	}
	if upd.AvatarURL != nil {
		acc.user.AvatarURL = *upd.AvatarURL
	}
	if upd.GithubProfile != nil {
		acc.user.GithubProfile = *upd.GithubProfile
	}
	if upd.LinkedinProfile != nil {
		acc.user.LinkedinProfile = *upd.LinkedinProfile
	}
	if upd.Skills != nil {
		acc.user.Skills = append([]string(nil), (*upd.Skills)...)
	}
	u := acc.user
	s.mu.Unlock()

	writeUser(w, u)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []models.Event
	for _, e := range s.events {
		if st := q.Get("status"); st != "" && e.Status != st {
			continue
		}
		if et := q.Get("event_type"); et != "" && e.EventType != et {
			continue
		}
		out = append(out, e)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(out, q.Get("skip"), q.Get("limit")))
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []models.BlogPost
	for _, p := range s.posts {
		if f := q.Get("is_featured"); f != "" && strconv.FormatBool(p.IsFeatured) != f {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(out, q.Get("skip"), q.Get("limit")))
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []models.Project
	for _, p := range s.projects {
		if st := q.Get("status"); st != "" && p.Status != st {
			continue
		}
		if f := q.Get("featured"); f != "" && strconv.FormatBool(p.Featured) != f {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(out, q.Get("skip"), q.Get("limit")))
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var sub models.NewsletterSubscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	active, known := s.subscribers[sub.Email]
	switch {
	case known && active:
		writeDetail(w, http.StatusBadRequest, "Email is already subscribed to newsletter")
	case known:
		s.subscribers[sub.Email] = true
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Newsletter subscription reactivated successfully"})
	default:
		s.subscribers[sub.Email] = true
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Successfully subscribed to newsletter"})
	}
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[email]; !ok {
		writeDetail(w, http.StatusNotFound, "Email not found in newsletter subscriptions")
		return
	}
	s.subscribers[email] = false
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Successfully unsubscribed from newsletter"})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg models.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	s.mu.Lock()
	s.contacts = append(s.contacts, msg)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Your message has been sent successfully. We'll get back to you soon!"})
}

// helpers

func paginate[T any](items []T, skipParam, limitParam string) []T {
	skip, _ := strconv.Atoi(skipParam)
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit <= 0 {
		limit = 50
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// writeUser encodes the profile with the document id under "_id", the way
// the API does.
func writeUser(w http.ResponseWriter, u models.User) {
	raw, _ := json.Marshal(u)
	var doc map[string]any
	_ = json.Unmarshal(raw, &doc)
	doc["_id"] = doc["id"]
	delete(doc, "id")
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeFieldError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body"}, "msg": msg, "type": "value_error"}},
	})
}

func readAll(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

func (s *Server) String() string {
	return fmt.Sprintf("fakeapi(%s)", s.URL)
}
