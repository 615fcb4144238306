// Package cli is the portal's command-line front-end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/notify"
	"healgenie-portal/internal/portal/session"

	"github.com/spf13/pflag"
)

var (
	ErrNotSignedIn    = errors.New("not signed in, run \"portal login\" first")
	ErrDoctorsOnly    = errors.New("only doctors can access patient records")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrEmptyQuery     = errors.New("please enter a patient name or ID")
)

type App struct {
	store    *session.Store
	client   backend.Client
	notifier notify.Notifier
	out      io.Writer
	reader   *bufio.Reader
	stdinFd  int
}

func NewApp(store *session.Store, client backend.Client, notifier notify.Notifier, in io.Reader, out io.Writer) *App {
	return &App{
		store:    store,
		client:   client,
		notifier: notifier,
		out:      out,
		reader:   bufio.NewReader(in),
		stdinFd:  int(os.Stdin.Fd()),
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

func (a *App) commands() []command {
	return []command{
		{"login", "sign in with email and password", a.login},
		{"register", "create a doctor or patient account", a.register},
		{"logout", "sign out and forget the saved session", a.logout},
		{"whoami", "show your profile and dashboard summary", a.whoami},
		{"refresh", "reload your profile", a.refresh},
		{"symbols", "list the available profile symbols", a.symbols},
		{"search", "search patients by name (doctors only)", a.search},
		{"record", "show a patient's record (doctors only)", a.record},
	}
}

// Run executes one command. Failures have already been reported through
// the notifier when Run returns an error.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return nil
	}

	for _, cmd := range a.commands() {
		if cmd.name == args[0] {
			err := cmd.run(ctx, args[1:])
			if errors.Is(err, pflag.ErrHelp) {
				return nil
			}
			return err
		}
	}

	a.usage()
	return a.fail("Unknown command", fmt.Errorf("%w: %s", ErrUnknownCommand, args[0]))
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: portal <command> [flags]")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")
	for _, cmd := range a.commands() {
		fmt.Fprintf(a.out, "  %-10s %s\n", cmd.name, cmd.summary)
	}
}

func (a *App) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// fail reports err and returns it.
func (a *App) fail(title string, err error) error {
	notify.Error(a.notifier, title, err)
	return err
}

func (a *App) requireIdentity() (*backend.Session, error) {
	identity := a.store.Identity()
	if identity == nil {
		return nil, a.fail("Not signed in", ErrNotSignedIn)
	}
	return identity, nil
}

// requireDoctor prefers the loaded profile's role over the session metadata.
func (a *App) requireDoctor() error {
	identity, err := a.requireIdentity()
	if err != nil {
		return err
	}
	userType := identity.UserType()
	if view := a.store.Profile().View; view != nil {
		userType = view.UserType()
	}
	if userType != "doctor" {
		return a.fail("Access denied", ErrDoctorsOnly)
	}
	return nil
}
