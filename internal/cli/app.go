// Package cli implements taskctl, a command line front end for the task API.
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
	"time"

	"github.com/Tomlord1122/task-manager/internal/client"
)

const usage = `usage: taskctl <command> [args]

commands:
  register [email]             create an account and log in
  login [email]                log in
  logout                       forget the stored token
  whoami                       show the logged in user
  list                         list your tasks, newest first
  add <title> [description]    create a task
  show <id>                    show one task
  done <id>                    mark a task completed
  undo <id>                    mark a task not completed
  edit <id> [-title t] [-description d]
                               change a task
  rm <id>                      delete a task
`

var ErrUsage = errors.New("invalid usage")

type App struct {
	session *client.Session
	in      *bufio.Reader
	out     io.Writer
}

func NewApp(session *client.Session, in io.Reader, out io.Writer) *App {
	return &App{session: session, in: bufio.NewReader(in), out: out}
}

// Run executes one command. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	}

	if err := a.session.Load(ctx); err != nil && !errors.Is(err, client.ErrUnauthorized) && !errors.Is(err, client.ErrNotFound) {
		return err
	}

	switch cmd {
	case "whoami":
		return a.whoami()
	case "list", "ls":
		return a.list(ctx)
	case "add":
		return a.add(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "done":
		return a.setCompleted(ctx, rest, true)
	case "undo":
		return a.setCompleted(ctx, rest, false)
	case "edit":
		return a.edit(ctx, rest)
	case "rm", "delete":
		return a.remove(ctx, rest)
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *App) credentials(args []string) (string, string, error) {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else if email, err = promptLine(a.in, a.out, "Email"); err != nil {
		return "", "", err
	}
	secret, err := promptSecret(a.in, a.out)
	if err != nil {
		return "", "", err
	}
	return email, secret, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	email, secret, err := a.credentials(args)
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, email, secret); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s\n", a.session.User().Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	email, secret, err := a.credentials(args)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, email, secret); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.User().Email)
	return nil
}

func (a *App) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) whoami() error {
	u := a.session.User()
	if u == nil {
		return client.ErrNotLoggedIn
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.ID)
	return nil
}

func (a *App) list(ctx context.Context) error {
	api, err := a.session.API()
	if err != nil {
		return err
	}
	tasks, err := api.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark(t.Completed), t.ID, t.Title, t.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: add <title> [description]", ErrUsage)
	}
	api, err := a.session.API()
	if err != nil {
		return err
	}
	var description string
	if len(args) == 2 {
		description = args[1]
	}
	t, err := api.CreateTask(ctx, args[0], description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %s\n", t.ID)
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	id, err := oneID("show", args)
	if err != nil {
		return err
	}
	api, err := a.session.API()
	if err != nil {
		return err
	}
	t, err := api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) setCompleted(ctx context.Context, args []string, completed bool) error {
	name := "done"
	if !completed {
		name = "undo"
	}
	id, err := oneID(name, args)
	if err != nil {
		return err
	}
	api, err := a.session.API()
	if err != nil {
		return err
	}
	t, err := api.UpdateTask(ctx, id, client.TaskUpdate{Completed: &completed})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", mark(t.Completed), t.Title)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: edit <id> [-title t] [-description d]", ErrUsage)
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(a.out)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var update client.TaskUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			update.Title = title
		case "description":
			update.Description = description
		}
	})
	if update.Title == nil && update.Description == nil {
		return fmt.Errorf("%w: nothing to change", ErrUsage)
	}

	api, err := a.session.API()
	if err != nil {
		return err
	}
	t, err := api.UpdateTask(ctx, id, update)
	if err != nil {
		return err
	}
	a.printTask(t)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, err := oneID("rm", args)
	if err != nil {
		return err
	}
	api, err := a.session.API()
	if err != nil {
		return err
	}
	if err := api.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task removed")
	return nil
}

func (a *App) printTask(t *client.Task) {
	fmt.Fprintf(a.out, "%s %s\n", mark(t.Completed), t.Title)
	if t.Description != "" {
		fmt.Fprintf(a.out, "    %s\n", t.Description)
	}
	fmt.Fprintf(a.out, "    id: %s\n    created: %s\n    updated: %s\n",
		t.ID, t.CreatedAt.Local().Format(time.DateTime), t.UpdatedAt.Local().Format(time.DateTime))
}

func oneID(cmd string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s <id>", ErrUsage, cmd)
	}
	return args[0], nil
}

func mark(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}
