package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/dnahub/internal/client/client"
	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/common"
	"github.com/dmitrijs2005/dnahub/internal/logging"
)

const (
	MsgRequiredFields     = "Please fill in all required fields."
	MsgInvalidEmail       = "Please enter a valid email address."
	MsgContactSent        = "Message sent successfully! We'll get back to you soon."
	MsgContactFailed      = "Failed to send message. Please try again."
	MsgSubscribed         = "Successfully subscribed to newsletter!"
	MsgSubscribeFailed    = "Failed to subscribe. Please try again."
	MsgUnsubscribed       = "Successfully unsubscribed from newsletter"
	MsgUnsubscribeFailed  = "Failed to unsubscribe. Please try again."
	MsgLoadEventsFailed   = "Failed to load events"
	MsgLoadBlogFailed     = "Failed to load blog posts"
	MsgLoadProjectsFailed = "Failed to load projects"
)

// ValidationError is a client-side input problem. It never reaches the API.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

// ContentService wraps the public community endpoints. Failures are shown
// through the Notifier and returned to the caller.
type ContentService struct {
	api    client.ContentAPI
	notify Notifier
	log    logging.Logger
}

func NewContentService(api client.ContentAPI, notify Notifier, log logging.Logger) *ContentService {
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &ContentService{api: api, notify: notify, log: log}
}

func (c *ContentService) ListEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	events, err := c.api.ListEvents(ctx, f)
	if err != nil {
		return nil, c.fail(ctx, "list events", err, MsgLoadEventsFailed)
	}
	return events, nil
}

func (c *ContentService) ListBlogPosts(ctx context.Context, f models.BlogFilter) ([]models.BlogPost, error) {
	posts, err := c.api.ListBlogPosts(ctx, f)
	if err != nil {
		return nil, c.fail(ctx, "list blog posts", err, MsgLoadBlogFailed)
	}
	return posts, nil
}

func (c *ContentService) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	projects, err := c.api.ListProjects(ctx, f)
	if err != nil {
		return nil, c.fail(ctx, "list projects", err, MsgLoadProjectsFailed)
	}
	return projects, nil
}

// Subscribe signs an address up for the newsletter. Missing preferences
// default to models.DefaultPreferences.
func (c *ContentService) Subscribe(ctx context.Context, sub models.NewsletterSubscription) error {
	sub.Email = strings.TrimSpace(sub.Email)
	if err := validateEmail(sub.Email); err != nil {
		c.notify.Error(ctx, err.Error())
		return err
	}
	if len(sub.Preferences) == 0 {
		sub.Preferences = append([]string(nil), models.DefaultPreferences...)
	}

	if _, err := c.api.Subscribe(ctx, sub); err != nil {
		return c.fail(ctx, "subscribe", err, MsgSubscribeFailed)
	}
	c.notify.Success(ctx, MsgSubscribed)
	return nil
}

func (c *ContentService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		c.notify.Error(ctx, err.Error())
		return err
	}

	if _, err := c.api.Unsubscribe(ctx, email); err != nil {
		return c.fail(ctx, "unsubscribe", err, MsgUnsubscribeFailed)
	}
	c.notify.Success(ctx, MsgUnsubscribed)
	return nil
}

// SendContact validates the form locally before posting it. Name, email and
// message are required; subject is optional.
func (c *ContentService) SendContact(ctx context.Context, msg models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)

	if msg.Name == "" || msg.Email == "" || strings.TrimSpace(msg.Message) == "" {
		err := &ValidationError{Message: MsgRequiredFields}
		c.notify.Error(ctx, err.Message)
		return err
	}
	if err := validateEmail(msg.Email); err != nil {
		c.notify.Error(ctx, err.Error())
		return err
	}

	if _, err := c.api.SendContact(ctx, msg); err != nil {
		return c.fail(ctx, "send contact", err, MsgContactFailed)
	}
	c.notify.Success(ctx, MsgContactSent)
	return nil
}

func (c *ContentService) fail(ctx context.Context, op string, err error, fallback string) error {
	c.log.Warn(ctx, op+" failed", "error", err)
	c.notify.Error(ctx, client.Detail(err, fallback))
	return fmt.Errorf("%s: %w", op, err)
}

func validateEmail(email string) error {
	if email == "" {
		return &ValidationError{Message: MsgRequiredFields}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	return nil
}
