package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/dnahub/internal/client/models"
	"github.com/dmitrijs2005/dnahub/internal/client/ui"
	"github.com/dmitrijs2005/dnahub/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// errReported marks failures the user has already been told about.
var errReported = errors.New("already reported")

func reported(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(errReported, err)
}

var errNotLoggedIn = errors.New("you are not logged in")

// Register prompts for the account fields and submits them through the auth
// modal. The modal switches to login mode on success.
func (a *App) Register(ctx context.Context) error {
	a.modal.Open(ui.ModeRegister)
	defer a.closeModalUnlessPending()

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.modal.Submit(ctx, ui.AuthForm{
		Email:    email,
		Password: string(password),
		FullName: fullName,
		Username: username,
	})
	if !res.Success {
		return reported(errors.New(res.Error))
	}
	return nil
}

// Login prompts for credentials and submits them through the auth modal.
func (a *App) Login(ctx context.Context) error {
	a.modal.Open(ui.ModeLogin)
	defer a.closeModalUnlessPending()

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.modal.Submit(ctx, ui.AuthForm{Email: email, Password: string(password)})
	if !res.Success {
		return reported(errors.New(res.Error))
	}
	return nil
}

// closeModalUnlessPending closes the dialog once the prompt is abandoned.
// There is no screen to keep it on.
func (a *App) closeModalUnlessPending() {
	if !a.modal.State().Loading {
		a.modal.Close()
	}
}

// Logout signs out locally. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// Me prints the cached profile of the signed-in user.
func (a *App) Me(ctx context.Context) error {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated() {
		return errNotLoggedIn
	}
	u := snap.User

	a.printf("Name:     %s\n", u.DisplayName())
	a.printf("Email:    %s\n", u.Email)
	if u.Username != "" {
		a.printf("Username: %s\n", u.Username)
	}
	if u.Role != "" {
		a.printf("Role:     %s\n", u.Role)
	}
	if u.Bio != "" {
		a.printf("Bio:      %s\n", u.Bio)
	}
	if u.GithubProfile != "" {
		a.printf("GitHub:   %s\n", u.GithubProfile)
	}
	if u.LinkedinProfile != "" {
		a.printf("LinkedIn: %s\n", u.LinkedinProfile)
	}
	if len(u.Skills) > 0 {
		a.printf("Skills:   %s\n", strings.Join(u.Skills, ", "))
	}
	return nil
}

// Profile prompts for each editable field. An empty answer leaves the field
// unchanged.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var upd models.ProfileUpdate
	prompts := []struct {
		label string
		dst   **string
	}{
		{"Full name", &upd.FullName},
		{"Bio", &upd.Bio},
		{"Avatar URL", &upd.AvatarURL},
		{"GitHub profile", &upd.GithubProfile},
		{"LinkedIn profile", &upd.LinkedinProfile},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label+" (empty to keep)", a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*p.dst = &v
		}
	}

	skills, err := getSimpleText(a.reader, "Skills, comma separated (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if list := splitList(skills); len(list) > 0 {
		upd.Skills = &list
	}

	if upd.Empty() {
		a.println("Nothing to update")
		return nil
	}

	res := a.session.UpdateProfile(ctx, upd)
	if !res.Success {
		return reported(errors.New(res.Error))
	}
	return nil
}

// Refresh renews the access token.
func (a *App) Refresh(ctx context.Context) error {
	res := a.session.RefreshToken(ctx)
	if !res.Success {
		return reported(errors.New(res.Error))
	}
	a.println("Session refreshed")
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
