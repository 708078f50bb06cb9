// Package models defines the client-side data carried to and from the
// community API.
package models

import (
	"encoding/json"

	"github.com/dmitrijs2005/dnahub/internal/timex"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User is the profile returned by /api/auth/me and /api/users/me.
type User struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	FullName        string          `json:"full_name"`
	Username        string          `json:"username,omitempty"`
	Bio             string          `json:"bio,omitempty"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	GithubProfile   string          `json:"github_profile,omitempty"`
	LinkedinProfile string          `json:"linkedin_profile,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	IsActive        bool            `json:"is_active"`
	Role            Role            `json:"role,omitempty"`
	CreatedAt       timex.Timestamp `json:"created_at"`
	UpdatedAt       timex.Timestamp `json:"updated_at"`
}

// UnmarshalJSON accepts the document id under either "id" or "_id".
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.DocumentID
	}
	return nil
}

// DisplayName is what the header shows for a signed-in user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Username string `json:"username,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ProfileUpdate is a partial update; nil fields are left untouched by the API.
type ProfileUpdate struct {
	FullName        *string   `json:"full_name,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	GithubProfile   *string   `json:"github_profile,omitempty"`
	LinkedinProfile *string   `json:"linkedin_profile,omitempty"`
	Skills          *[]string `json:"skills,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Bio == nil && p.AvatarURL == nil &&
		p.GithubProfile == nil && p.LinkedinProfile == nil && p.Skills == nil
}

// MessageResponse is the generic {"message": ...} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
