// Package cli implements the contacts command-line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/contactbook/contactbook-go/internal/apperr"
	"github.com/contactbook/contactbook-go/internal/client"
	"github.com/contactbook/contactbook-go/internal/model"
)

const usage = `Usage: contacts [--base-url URL] [--config FILE] [--credentials FILE] <command> [flags]

Commands:
  register [--email E] [--name N]           create an account and log in
  login [--email E]                         log in
  logout                                    forget the stored session
  whoami                                    show the logged-in user
  list                                      list your contacts
  add [--name N] [--email E] [--phone P]    create a contact
  update <id> --name N --email E --phone P  replace a contact
  delete <id>                               delete a contact
`

// Backend is the subset of *client.Client the commands use.
type Backend interface {
	Login(ctx context.Context, email, password string) (client.Session, error)
	Register(ctx context.Context, email, password, name string) (client.Session, error)
	Logout() error
	Session() (client.Session, error)
	Me(ctx context.Context) (model.UserResponse, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	CreateContact(ctx context.Context, in model.ContactInput) (model.Contact, error)
	UpdateContact(ctx context.Context, id string, in model.ContactInput) (model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// errUsage marks a command-line mistake; Run exits with status 2.
var errUsage = errors.New("usage")

// App runs one command against a Backend.
type App struct {
	backend Backend
	reader  *bufio.Reader
	out     io.Writer
	errOut  io.Writer
}

// NewApp creates an App reading prompts from in.
func NewApp(backend Backend, in io.Reader, out, errOut io.Writer) *App {
	return &App{backend: backend, reader: bufio.NewReader(in), out: out, errOut: errOut}
}

// Run executes args[0] with the remaining arguments and returns the process exit status.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "register":
		err = a.register(ctx, rest)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout()
	case "whoami":
		err = a.whoami(ctx)
	case "list", "ls":
		err = a.list(ctx)
	case "add":
		err = a.add(ctx, rest)
	case "update":
		err = a.update(ctx, rest)
	case "delete", "rm":
		err = a.delete(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	return a.report(err)
}

func (a *App) report(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		// The flag package has already printed its own parse errors.
		if err != errUsage {
			fmt.Fprintln(a.errOut, err)
		}
		return 2
	}

	msg := err.Error()
	if ae, ok := apperr.As(err); ok {
		msg = ae.Detail()
	}
	fmt.Fprintln(a.errOut, "Error:", msg)

	if apperr.Is(err, apperr.KindAuthentication) {
		fmt.Fprintln(a.errOut, "Run 'contacts login' to sign in.")
	}
	return 1
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.newFlagSet("register")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name (optional)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.promptIfEmpty(email, "Email"); err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	sess, err := a.backend.Register(ctx, *email, password, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", sess.User.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "account email")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.promptIfEmpty(email, "Email"); err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	sess, err := a.backend.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", sess.User.Email)
	return nil
}

func (a *App) logout() error {
	sess, err := a.backend.Session()
	if errors.Is(err, client.ErrNoSession) {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	if err := a.backend.Logout(); err != nil {
		return err
	}
	if sess.User.Email != "" {
		fmt.Fprintf(a.out, "Logged out %s\n", sess.User.Email)
	} else {
		fmt.Fprintln(a.out, "Logged out")
	}
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	user, err := a.backend.Me(ctx)
	if err != nil {
		return err
	}
	if user.Name != "" {
		fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	} else {
		fmt.Fprintln(a.out, user.Email)
	}
	return nil
}

func (a *App) list(ctx context.Context) error {
	contacts, err := a.backend.ListContacts(ctx)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		fmt.Fprintln(a.out, "No contacts yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone)
	}
	return tw.Flush()
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	in := contactFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	for _, f := range []struct {
		v      *string
		prompt string
	}{{&in.Name, "Name"}, {&in.Email, "Email"}, {&in.Phone, "Phone"}} {
		if err := a.promptIfEmpty(f.v, f.prompt); err != nil {
			return err
		}
	}

	c, err := a.backend.CreateContact(ctx, *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created contact %s\n", c.ID)
	return nil
}

func (a *App) update(ctx context.Context, args []string) error {
	id, rest, err := leadingID("update", args)
	if err != nil {
		return err
	}

	fs := a.newFlagSet("update")
	in := contactFlags(fs)
	if err := parseFlags(fs, rest); err != nil {
		return err
	}

	c, err := a.backend.UpdateContact(ctx, id, *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated contact %s\n", c.ID)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	id, rest, err := leadingID("delete", args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: delete takes exactly one id", errUsage)
	}

	if err := a.backend.DeleteContact(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted contact %s\n", id)
	return nil
}

func (a *App) promptIfEmpty(v *string, prompt string) error {
	if strings.TrimSpace(*v) != "" {
		return nil
	}
	text, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	*v = text
	return nil
}

func contactFlags(fs *flag.FlagSet) *model.ContactInput {
	in := &model.ContactInput{}
	fs.StringVar(&in.Name, "name", "", "contact name")
	fs.StringVar(&in.Email, "email", "", "contact email")
	fs.StringVar(&in.Phone, "phone", "", "contact phone (at least 10 characters)")
	return in
}

func leadingID(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s requires a contact id", errUsage, cmd)
	}
	return args[0], args[1:], nil
}
