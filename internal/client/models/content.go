package models

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/dnahub/internal/timex"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

type Event struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	EventType            string          `json:"event_type"`
	StartDate            timex.Timestamp `json:"start_date"`
	EndDate              timex.Timestamp `json:"end_date"`
	Location             string          `json:"location,omitempty"`
	IsOnline             bool            `json:"is_online"`
	MaxParticipants      *int            `json:"max_participants,omitempty"`
	RegistrationDeadline timex.Timestamp `json:"registration_deadline"`
	Tags                 []string        `json:"tags,omitempty"`
	ImageURL             string          `json:"image_url,omitempty"`
	Status               string          `json:"status"`
	ParticipantCount     int             `json:"participant_count"`
}

func (e *Event) UnmarshalJSON(b []byte) error {
	type plain Event
	var aux struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Event(aux.plain)
	if e.ID == "" {
		e.ID = aux.DocumentID
	}
	return nil
}

type BlogPost struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       string          `json:"excerpt,omitempty"`
	FeaturedImage string          `json:"featured_image,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	IsPublished   bool            `json:"is_published"`
	IsFeatured    bool            `json:"is_featured"`
	AuthorID      string          `json:"author_id"`
	ViewCount     int             `json:"view_count"`
	CreatedAt     timex.Timestamp `json:"created_at"`
}

func (p *BlogPost) UnmarshalJSON(b []byte) error {
	type plain BlogPost
	var aux struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = BlogPost(aux.plain)
	if p.ID == "" {
		p.ID = aux.DocumentID
	}
	return nil
}

type Project struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	GithubURL    string   `json:"github_url,omitempty"`
	DemoURL      string   `json:"demo_url,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Contributors []string `json:"contributors,omitempty"`
	Status       string   `json:"status"`
	Featured     bool     `json:"featured"`
}

func (p *Project) UnmarshalJSON(b []byte) error {
	type plain Project
	var aux struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Project(aux.plain)
	if p.ID == "" {
		p.ID = aux.DocumentID
	}
	return nil
}

// Newsletter preference topics.
const (
	PreferenceEvents        = "events"
	PreferenceAnnouncements = "announcements"
	PreferenceBlogPosts     = "blog_posts"
)

// DefaultPreferences is what the signup form subscribes to.
var DefaultPreferences = []string{PreferenceEvents, PreferenceAnnouncements, PreferenceBlogPosts}

type NewsletterSubscription struct {
	Email       string   `json:"email"`
	FullName    string   `json:"full_name,omitempty"`
	Preferences []string `json:"preferences"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Page holds the pagination parameters shared by every listing.
type Page struct {
	Skip   int
	Limit  int
	Search string
}

func (p Page) values() url.Values {
	v := url.Values{}
	if p.Skip > 0 {
		v.Set("skip", strconv.Itoa(p.Skip))
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	v.Set("limit", strconv.Itoa(limit))
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

type EventFilter struct {
	Page
	Status    string
	EventType string
}

func (f EventFilter) Values() url.Values {
	v := f.Page.values()
	v.Del("search")
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.EventType != "" {
		v.Set("event_type", f.EventType)
	}
	return v
}

type BlogFilter struct {
	Page
	Featured *bool
}

func (f BlogFilter) Values() url.Values {
	v := f.Page.values()
	if f.Featured != nil {
		v.Set("is_featured", strconv.FormatBool(*f.Featured))
	}
	return v
}

type ProjectFilter struct {
	Page
	Status   string
	Featured *bool
}

func (f ProjectFilter) Values() url.Values {
	v := f.Page.values()
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Featured != nil {
		v.Set("featured", strconv.FormatBool(*f.Featured))
	}
	return v
}
