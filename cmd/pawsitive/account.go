package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/app"
	"github.com/pawsitive-drive/pawsitive/internal/session"
	"github.com/skratchdot/open-golang/open"
)

func runLogin(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if *email == "" {
		*email = prompt("Email: ")
	}
	if *password == "" {
		*password = prompt("Password: ")
	}

	id, err := a.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", describe(ctx, a, id))
	return nil
}

func runSignup(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("signup")
	var req api.SignupRequest
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password (prompted when omitted)")
	fs.StringVar(&req.Role, "role", "Donor", "account role: Donor or Adoptor")
	fs.StringVar(&req.Address, "address", "", "postal address")
	fs.StringVar(&req.Contact, "contact", "", "contact number")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if req.Name == "" {
		req.Name = prompt("Name: ")
	}
	if req.Email == "" {
		req.Email = prompt("Email: ")
	}
	if req.Password == "" {
		req.Password = prompt("Password: ")
	}

	id, err := a.Auth.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome, %s\n", describe(ctx, a, id))
	return nil
}

func runLogout(ctx context.Context, a *app.App, args []string) error {
	fs := newFlagSet("logout")
	openBrowser := fs.Bool("open", false, "open the site's landing page afterwards")
	if help, err := parse(fs, args); help || err != nil {
		return err
	}
	if *openBrowser {
		a.Auth.OnLogout = func() {
			if err := open.Run(siteRoot(a.Config.APIBaseURL)); err != nil {
				fmt.Fprintf(os.Stderr, "could not open browser: %v\n", err)
			}
		}
	}
	a.Auth.Logout()
	fmt.Println("Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app.App, args []string) error {
	if help, err := parse(newFlagSet("whoami"), args); help || err != nil {
		return err
	}
	id := a.Session.Get()
	if id == nil {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Println(describe(ctx, a, id))
	if id.Email != "" {
		fmt.Printf("  email:   %s\n", id.Email)
	}
	if id.ContactNumber != "" {
		fmt.Printf("  contact: %s\n", id.ContactNumber)
	}
	if id.Address != "" {
		fmt.Printf("  address: %s\n", id.Address)
	}
	if a.Gate.Allowed(ctx, id) {
		fmt.Println("  admin:   yes")
	}
	return nil
}

func describe(ctx context.Context, a *app.App, id *session.Identity) string {
	label := a.Roles.Label(ctx, id)
	if label == "" {
		return fmt.Sprintf("%s (#%d)", id.Name, id.UserID)
	}
	return fmt.Sprintf("%s (#%d, %s)", id.Name, id.UserID, label)
}

// siteRoot strips a trailing /api from the API root.
func siteRoot(apiBase string) string {
	return strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}
