package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/metrics"
)

var errNoUser = errors.New("no username given and not logged in")

const timeLayout = "2006-01-02 15:04:05"

func (a *App) report(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		fmt.Fprintln(a.out, "Not found:", err)
	case errors.Is(err, common.ErrorAlreadyExists):
		fmt.Fprintln(a.out, "Already exists:", err)
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

// target picks the username a command applies to.
func (a *App) target(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.userName != "" {
		return a.userName, nil
	}
	return "", errNoUser
}

func (a *App) readPassword() (string, error) {
	pw, err := GetPassword(a.out)
	if err != nil {
		return "", err
	}
	defer clear(pw)
	return string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.report(err)
	}
	password, err := a.readPassword()
	if err != nil {
		return a.report(err)
	}

	var fields [3]string
	for i, prompt := range []string{"Enter first name", "Enter last name", "Enter phone"} {
		fields[i], err = GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return a.report(err)
		}
	}

	u, err := a.dir.Register(ctx, username, password, fields[0], fields[1], fields[2])
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Registered %s (%s %s)\n", u.Username, u.FirstName, u.LastName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.report(err)
	}
	password, err := a.readPassword()
	if err != nil {
		return a.report(err)
	}

	ok, err := a.dir.Authenticate(ctx, username, password)
	if err != nil {
		return a.report(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Invalid username or password")
		return nil
	}

	a.userName = username
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Users(ctx context.Context) error {
	users, err := a.dir.All(ctx)
	if err != nil {
		return a.report(err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tFIRST NAME\tLAST NAME")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Username, u.FirstName, u.LastName)
	}
	return tw.Flush()
}

func (a *App) User(ctx context.Context, args []string) error {
	username, err := a.target(args)
	if err != nil {
		return a.report(err)
	}

	u, err := a.dir.Get(ctx, username)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Username:   %s\n", u.Username)
	fmt.Fprintf(a.out, "Name:       %s %s\n", u.FirstName, u.LastName)
	fmt.Fprintf(a.out, "Phone:      %s\n", u.Phone)
	fmt.Fprintf(a.out, "Joined:     %s\n", u.JoinAt.Format(timeLayout))
	fmt.Fprintf(a.out, "Last login: %s\n", formatOptional(u.LastLoginAt, "never"))
	return nil
}

func formatOptional(t *time.Time, missing string) string {
	if t == nil {
		return missing
	}
	return t.Format(timeLayout)
}

func readStatus(readAt *time.Time) string {
	if readAt == nil {
		return "unread"
	}
	return "read " + formatOptional(readAt, "")
}

func (a *App) Sent(ctx context.Context, args []string) error {
	username, err := a.target(args)
	if err != nil {
		return a.report(err)
	}

	msgs, err := a.dir.MessagesFrom(ctx, username)
	if err != nil {
		return a.report(err)
	}

	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "#%d to %s at %s (%s): %s\n",
			m.ID, m.ToUser.Username, m.SentAt.Format(timeLayout), readStatus(m.ReadAt), m.Body)
	}
	return nil
}

func (a *App) Inbox(ctx context.Context, args []string) error {
	username, err := a.target(args)
	if err != nil {
		return a.report(err)
	}

	msgs, err := a.dir.MessagesTo(ctx, username)
	if err != nil {
		return a.report(err)
	}

	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "#%d from %s at %s (%s): %s\n",
			m.ID, m.FromUser.Username, m.SentAt.Format(timeLayout), readStatus(m.ReadAt), m.Body)
	}
	return nil
}

func (a *App) Touch(ctx context.Context, args []string) error {
	username, err := a.target(args)
	if err != nil {
		return a.report(err)
	}

	if err := a.dir.UpdateLoginTimestamp(ctx, username); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Updated last login for", username)
	return nil
}

// readStats is a test seam for metrics.ReadDirectoryStats.
var readStats = metrics.ReadDirectoryStats

// Stats prints the directory counters this process has accumulated.
func (a *App) Stats(ctx context.Context) error {
	st, err := readStats()
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Registrations: %.0f\n", st.Registrations)
	fmt.Fprintln(a.out, "Authentications:")
	for _, outcome := range []string{metrics.AuthSuccess, metrics.AuthMismatch, metrics.AuthUnknownUser, metrics.AuthError} {
		fmt.Fprintf(a.out, "  %-13s %.0f\n", outcome, st.Authentications[outcome])
	}
	return nil
}
