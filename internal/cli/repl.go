package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
// App satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	User(ctx context.Context, args []string) error
	Sent(ctx context.Context, args []string) error
	Inbox(ctx context.Context, args []string) error
	Touch(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a
// until EOF or "exit"/"quit".
//
//	help                  show available commands
//	register              create an account
//	login                 check credentials and remember the user
//	logout                forget the current user
//	users                 list every user
//	user [username]       show one user's record
//	sent [username]       messages sent by the user
//	inbox [username]      messages received by the user
//	touch [username]      refresh the user's last-login time
//	stats                 registration and authentication counters of this session
//	exit | quit           leave the program
//
// Commands taking a username default to the logged-in user. Handler errors
// are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("messagely %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: users, user, sent, inbox, touch, stats, logout, exit")
			} else {
				printlnFn("Available commands: register, login, users, user <name>, sent <name>, inbox <name>, touch <name>, stats, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "users":
			_ = a.Users(ctx)

		case "user":
			_ = a.User(ctx, args)

		case "sent":
			_ = a.Sent(ctx, args)

		case "inbox":
			_ = a.Inbox(ctx, args)

		case "touch":
			_ = a.Touch(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
