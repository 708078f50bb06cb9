package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/dnahub/internal/client/client"
	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/common"
	"github.com/dmitrijs2005/dnahub/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentService(t *testing.T) (*ContentService, *fakeapi.Server, *recordingNotifier) {
	t.Helper()
	srv := fakeapi.New(t)
	api, err := client.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	n := &recordingNotifier{}
	return NewContentService(api, n, nil), srv, n
}

func TestSendContact_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		msg  models.ContactMessage
	}{
		{"no name", models.ContactMessage{Email: "a@example.com", Message: "hi"}},
		{"no email", models.ContactMessage{Name: "A", Message: "hi"}},
		{"blank message", models.ContactMessage{Name: "A", Email: "a@example.com", Message: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, srv, n := newContentService(t)

			err := svc.SendContact(context.Background(), tt.msg)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, MsgRequiredFields, verr.Message)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Equal(t, []string{MsgRequiredFields}, n.Errors())
			assert.Empty(t, srv.Requests(), "validation never reaches the network")
		})
	}
}

func TestSendContact_InvalidEmail(t *testing.T) {
	svc, srv, _ := newContentService(t)

	err := svc.SendContact(context.Background(), models.ContactMessage{Name: "A", Email: "not-an-email", Message: "hi"})
	require.EqualError(t, err, MsgInvalidEmail)
	assert.Empty(t, srv.Requests())
}

func TestSendContact_Success(t *testing.T) {
	svc, srv, n := newContentService(t)

	err := svc.SendContact(context.Background(), models.ContactMessage{
		Name: "  Ada ", Email: "ada@example.com", Subject: "Hello", Message: "Let's talk",
	})
	require.NoError(t, err)

	got := srv.Contacts()
	require.Len(t, got, 1)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "Let's talk", got[0].Message)
	assert.Equal(t, []string{MsgContactSent}, n.Successes())
}

func TestSendContact_ServerError(t *testing.T) {
	svc, srv, n := newContentService(t)
	srv.FailNext(http.MethodPost, "/api/contact", http.StatusInternalServerError, "")

	err := svc.SendContact(context.Background(), models.ContactMessage{Name: "A", Email: "a@example.com", Message: "m"})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{MsgContactFailed}, n.Errors())
}

func TestSubscribe_DefaultPreferences(t *testing.T) {
	svc, srv, n := newContentService(t)

	require.NoError(t, svc.Subscribe(context.Background(), models.NewsletterSubscription{Email: " fan@example.com "}))
	assert.True(t, srv.Subscribed("fan@example.com"))
	assert.Equal(t, []string{MsgSubscribed}, n.Successes())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	var body models.NewsletterSubscription
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, models.DefaultPreferences, body.Preferences)
}

func TestSubscribe_AlreadySubscribed(t *testing.T) {
	svc, _, n := newContentService(t)
	ctx := context.Background()

	require.NoError(t, svc.Subscribe(ctx, models.NewsletterSubscription{Email: "fan@example.com"}))
	require.Error(t, svc.Subscribe(ctx, models.NewsletterSubscription{Email: "fan@example.com"}))
	assert.Equal(t, []string{"Email is already subscribed to newsletter"}, n.Errors())
}

func TestSubscribe_EmptyEmail(t *testing.T) {
	svc, srv, _ := newContentService(t)

	err := svc.Subscribe(context.Background(), models.NewsletterSubscription{})
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, srv.Requests())
}

func TestUnsubscribe(t *testing.T) {
	svc, srv, n := newContentService(t)
	ctx := context.Background()

	require.Error(t, svc.Unsubscribe(ctx, "ghost@example.com"))
	assert.Equal(t, []string{"Email not found in newsletter subscriptions"}, n.Errors())

	require.NoError(t, svc.Subscribe(ctx, models.NewsletterSubscription{Email: "fan@example.com"}))
	require.NoError(t, svc.Unsubscribe(ctx, "fan@example.com"))
	assert.False(t, srv.Subscribed("fan@example.com"))
}

func TestListings(t *testing.T) {
	svc, srv, n := newContentService(t)
	srv.AddEvents(models.Event{ID: "e1", Title: "Go meetup", Status: "upcoming"})
	srv.AddPosts(models.BlogPost{ID: "b1", Title: "Hello"})
	srv.AddProjects(models.Project{ID: "p1", Title: "dnahub", Status: "active"})
	ctx := context.Background()

	events, err := svc.ListEvents(ctx, models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	posts, err := svc.ListBlogPosts(ctx, models.BlogFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	projects, err := svc.ListProjects(ctx, models.ProjectFilter{Status: "archived"})
	require.NoError(t, err)
	assert.Empty(t, projects)

	assert.Empty(t, n.Errors())
}

func TestListEvents_FailureToast(t *testing.T) {
	svc, srv, n := newContentService(t)
	srv.FailNext(http.MethodGet, "/api/events", http.StatusInternalServerError, "")

	_, err := svc.ListEvents(context.Background(), models.EventFilter{})
	require.Error(t, err)
	assert.Equal(t, []string{MsgLoadEventsFailed}, n.Errors())
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ada@example.com", ""},
		{"", MsgRequiredFields},
		{"ada", MsgInvalidEmail},
		{"Ada <ada@example.com>", MsgInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validateEmail(tt.email)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.want)
		})
	}
}
