package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/services"
	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
)

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

// Login prompts for the email (unless given as an argument) and the master
// password, logs in and prints the new session key.
//
// The password byte slice is securely wiped before returning.
func (a *App) Login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.errOut)
	raw := fs.Bool("raw", false, "print only the session key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email := fs.Arg(0)
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Email address", a.errOut); err != nil {
			return err
		}
	}

	password, err := getPassword(a.errOut)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.errOut, "You are logged in as %s.\n", res.AccountID)
	a.printSession(res, *raw)
	return nil
}

// Unlock prompts for the master password of the active account and prints
// a new session key. It works offline.
func (a *App) Unlock(ctx context.Context, args []string) error {
	fs := newFlagSet("unlock", a.errOut)
	raw := fs.Bool("raw", false, "print only the session key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := getPassword(a.errOut)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.Unlock(ctx, password)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.errOut, "Your vault is now unlocked!")
	a.printSession(res, *raw)
	return nil
}

// printSession writes the session key to stdout so it can be captured, and
// the explanation to stderr.
func (a *App) printSession(res *services.SessionResult, raw bool) {
	if raw {
		fmt.Fprintln(a.out, res.SessionKey)
		return
	}
	fmt.Fprintf(a.errOut, "To unlock your vault, set your session key in the %s environment variable:\n", EnvSession)
	fmt.Fprintf(a.out, "export %s=%q\n", EnvSession, res.SessionKey)
	fmt.Fprintln(a.errOut, "You can also pass the session key to any command with --session.")
}

func (a *App) Lock(ctx context.Context) error {
	if err := a.authService.Lock(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Your vault is locked.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "You have logged out.")
	return nil
}

type statusOutput struct {
	ServerURL string `json:"serverUrl"`
	UserID    string `json:"userId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	Status    string `json:"status"`
}

// Status prints the login state as JSON: unauthenticated, locked or
// unlocked.
func (a *App) Status(ctx context.Context, args []string) error {
	fs := newFlagSet("status", a.errOut)
	session := fs.String("session", "", "session key (default $"+EnvSession+")")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := a.authService.Status(ctx, a.sessionKey(*session))
	if err != nil {
		return err
	}

	out := statusOutput{Status: "unauthenticated"}
	if a.config != nil {
		out.ServerURL = a.config.ServerURL
	}
	if st.Active != nil {
		out.UserID = st.Active.ID
		out.UserEmail = st.Active.Email
	}
	switch {
	case st.Unlocked:
		out.Status = "unlocked"
	case st.LoggedIn:
		out.Status = "locked"
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Accounts lists registered accounts; the active one is marked with '*'.
func (a *App) Accounts(ctx context.Context) error {
	list, err := a.authService.Accounts(ctx)
	if err != nil {
		return err
	}
	st, err := a.authService.Status(ctx, "")
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No accounts.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, acct := range list {
		mark := " "
		if st.Active != nil && st.Active.ID == acct.ID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, acct.ID, acct.Email)
	}
	return tw.Flush()
}

// Switch makes the given account active.
func (a *App) Switch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: switch <accountId>")
	}
	if err := a.authService.Switch(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Switched to account %s.\n", args[0])
	return nil
}
