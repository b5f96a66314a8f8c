package cli

import (
	"context"
	"fmt"

	"github.com/kinganjia/backend/internal/client/api"
)

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account details, creates the account and stays
// logged in as it.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "Enter first name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Enter last name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	s, err := a.api.Register(ctx, api.RegisterRequest{
		Email:     email,
		Password:  string(password),
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return err
	}

	a.setUser(&s.User)
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and keeps the issued token on the client.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	s, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	a.setUser(&s.User)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s (token valid for %ds)\n", s.User.Email, s.ExpiresIn)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "#%d %s %s <%s>, %d claims\n", u.ID, u.FirstName, u.LastName, u.Email, len(u.Claims))
	return nil
}

// Logout forgets the session locally even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.setUser(nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
