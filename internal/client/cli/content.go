package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dnahub/internal/client/client"
	"github.com/dmitrijs2005/dnahub/internal/client/models"
)

// Events lists events. An optional argument filters by status
// (upcoming, ongoing, completed).
func (a *App) Events(ctx context.Context, args []string) error {
	var f models.EventFilter
	if len(args) > 0 {
		f.Status = args[0]
	}

	events, err := a.content.ListEvents(ctx, f)
	if err != nil {
		return reported(err)
	}
	if len(events) == 0 {
		a.println("No events found")
		return nil
	}
	for _, e := range events {
		when := "TBA"
		if !e.StartDate.IsZero() {
			when = e.StartDate.Format("2006-01-02 15:04")
		}
		where := e.Location
		if e.IsOnline {
			where = "online"
		}
		a.printf("%-16s %-10s %-12s %s", when, e.Status, e.EventType, e.Title)
		if where != "" {
			a.printf(" @ %s", where)
		}
		a.println()
	}
	return nil
}

// Blog lists published posts. The argument "featured" limits the list to
// featured posts.
func (a *App) Blog(ctx context.Context, args []string) error {
	var f models.BlogFilter
	if len(args) > 0 && args[0] == "featured" {
		featured := true
		f.Featured = &featured
	}

	posts, err := a.content.ListBlogPosts(ctx, f)
	if err != nil {
		return reported(err)
	}
	if len(posts) == 0 {
		a.println("No posts found")
		return nil
	}
	for _, p := range posts {
		mark := " "
		if p.IsFeatured {
			mark = "*"
		}
		a.printf("%s %s", mark, p.Title)
		if p.Excerpt != "" {
			a.printf(" - %s", p.Excerpt)
		}
		a.println()
	}
	return nil
}

// Projects lists community projects, optionally filtered by status.
func (a *App) Projects(ctx context.Context, args []string) error {
	var f models.ProjectFilter
	if len(args) > 0 {
		f.Status = args[0]
	}

	projects, err := a.content.ListProjects(ctx, f)
	if err != nil {
		return reported(err)
	}
	if len(projects) == 0 {
		a.println("No projects found")
		return nil
	}
	for _, p := range projects {
		a.printf("%-10s %s", p.Status, p.Title)
		if len(p.Technologies) > 0 {
			a.printf(" [%s]", strings.Join(p.Technologies, ", "))
		}
		if p.GithubURL != "" {
			a.printf(" %s", p.GithubURL)
		}
		a.println()
	}
	return nil
}

// Subscribe signs an address up for the newsletter. The signed-in user's
// email is offered as the default.
func (a *App) Subscribe(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	return reported(a.content.Subscribe(ctx, models.NewsletterSubscription{
		Email:    email,
		FullName: a.session.Snapshot().User.DisplayName(),
	}))
}

func (a *App) Unsubscribe(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	return reported(a.content.Unsubscribe(ctx, email))
}

// Contact collects the contact form. Name and email default to the signed-in
// user.
func (a *App) Contact(ctx context.Context) error {
	user := a.session.Snapshot().User

	name, err := getSimpleText(a.reader, withDefault("Your name", user.DisplayName()), a.out)
	if err != nil {
		return err
	}
	if name == "" {
		name = user.DisplayName()
	}
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	subject, err := getSimpleText(a.reader, "Subject", a.out)
	if err != nil {
		return err
	}
	message, err := getMultiline(a.reader, "Message", a.out)
	if err != nil {
		return err
	}

	return reported(a.content.SendContact(ctx, models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	}))
}

func (a *App) promptEmail() (string, error) {
	var def string
	if u := a.session.Snapshot().User; u != nil {
		def = u.Email
	}
	email, err := getSimpleText(a.reader, withDefault("Email", def), a.out)
	if err != nil {
		return "", err
	}
	if email == "" {
		email = def
	}
	return email, nil
}

func withDefault(prompt, def string) string {
	if def == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, def)
}

// Section reports which navigation section is highlighted at scrollY for
// the configured layout.
func (a *App) Section(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: section <scrollY>")
	}
	y, err := strconv.ParseFloat(args[0], 64)
	if err != nil || y < 0 {
		return fmt.Errorf("invalid scroll offset %q", args[0])
	}

	st := a.tracker.OnScroll(y, a.config.Layout)
	past := "no"
	if st.ScrolledPastHome {
		past = "yes"
	}
	a.printf("Active section: %s (scrolled past home: %s)\n", st.Active, past)
	return nil
}

// Stats prints how many API calls were made, by endpoint and outcome.
func (a *App) Stats(_ context.Context) error {
	stats, err := client.RequestStats(a.gatherer)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		a.println("No requests yet")
		return nil
	}
	for _, s := range stats {
		a.printf("%-6s %-30s %-6s %d\n", s.Method, s.Path, s.Status, int(s.Count))
	}
	return nil
}
