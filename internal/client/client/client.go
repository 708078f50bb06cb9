package client

import (
	"context"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
)

// AuthAPI covers the account endpoints used by the session store.
type AuthAPI interface {
	// SetAccessToken replaces the token attached to outgoing requests.
	// An empty token sends requests anonymously.
	SetAccessToken(token string)
	// OnUnauthorized registers fn to run after any 401 response. token is
	// the credential the rejected request carried.
	OnUnauthorized(fn func(ctx context.Context, token string))

	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, creds models.Credentials) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateCurrentUser(ctx context.Context, upd models.ProfileUpdate) (*models.User, error)
}

// ContentAPI covers the public community endpoints.
type ContentAPI interface {
	ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	ListBlogPosts(ctx context.Context, f models.BlogFilter) ([]models.BlogPost, error)
	ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error)
	Subscribe(ctx context.Context, sub models.NewsletterSubscription) (string, error)
	Unsubscribe(ctx context.Context, email string) (string, error)
	SendContact(ctx context.Context, msg models.ContactMessage) (string, error)
}

type Client interface {
	AuthAPI
	ContentAPI
	Ping(ctx context.Context) error
	Close() error
}
