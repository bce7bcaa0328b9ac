package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophkeeper-session/internal/client/client"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/config"
	"github.com/dmitrijs2005/gophkeeper-session/internal/client/services"
	"github.com/dmitrijs2005/gophkeeper-session/internal/cryptox"
	"github.com/dmitrijs2005/gophkeeper-session/internal/flagx"
	"github.com/dmitrijs2005/gophkeeper-session/internal/logging"
)

// EnvSession carries the session key between invocations.
const EnvSession = "GOPHKEEPER_SESSION"

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	config      *config.Config
	authService services.AuthService
	reader      *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	getenv      func(string) string
	log         logging.Logger
}

// NewApp wires the data file, the identity client and the auth service
// from c.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	path, err := c.DataFilePath()
	if err != nil {
		return nil, fmt.Errorf("data file: %w", err)
	}
	logger.Debug(context.Background(), "using data file", "path", path)

	store := services.OpenStore(path, logger)
	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	as := services.NewAuthService(apiClient, store, cryptox.NewProvider(), logger)

	return &App{
		config:      c,
		authService: as,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		errOut:      os.Stderr,
		getenv:      os.Getenv,
		log:         logger,
	}, nil
}

// Run executes the command named in args and returns the process exit code.
// Global flags are skipped; they have already been applied to the config.
func (a *App) Run(ctx context.Context, args []string) int {
	rest := flagx.Remaining(args, config.Flags)
	if len(rest) == 0 {
		a.usage(a.errOut)
		return 2
	}

	cmd, cmdArgs := rest[0], rest[1:]
	var err error

	switch cmd {
	case "login":
		err = a.Login(ctx, cmdArgs)
	case "unlock":
		err = a.Unlock(ctx, cmdArgs)
	case "lock":
		err = a.Lock(ctx)
	case "logout":
		err = a.Logout(ctx)
	case "status":
		err = a.Status(ctx, cmdArgs)
	case "accounts":
		err = a.Accounts(ctx)
	case "switch":
		err = a.Switch(ctx, cmdArgs)
	case "help", "-h", "--help":
		a.usage(a.out)
		return 0
	default:
		fmt.Fprintf(a.errOut, "Unknown command: %s\n", cmd)
		a.usage(a.errOut)
		return 2
	}

	if err != nil {
		a.log.Debug(ctx, "command failed", "command", cmd, "error", err)
		fmt.Fprintln(a.errOut, describe(err))
		return 1
	}
	return 0
}

func (a *App) usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gophkeeper [-s url] [-d dir] [-l level] [-t timeout] [-c config.json] <command>")
	fmt.Fprintln(w, "Available commands: login, unlock, lock, logout, status, accounts, switch")
}

// sessionKey returns the --session value, or GOPHKEEPER_SESSION when the
// flag is empty.
func (a *App) sessionKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.getenv(EnvSession)
}
