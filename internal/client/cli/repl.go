package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Profile(ctx context.Context) error
	Refresh(ctx context.Context) error
	Events(ctx context.Context, args []string) error
	Blog(ctx context.Context, args []string) error
	Projects(ctx context.Context, args []string) error
	Subscribe(ctx context.Context) error
	Unsubscribe(ctx context.Context) error
	Contact(ctx context.Context) error
	Section(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, events, blog, projects, subscribe, unsubscribe, contact, section <scrollY>, stats, exit"
	helpSignedIn  = "Available commands: me, profile, refresh, logout, events, blog, projects, subscribe, unsubscribe, contact, section <scrollY>, stats, exit"
)

// runREPL starts a simple read–eval–print loop for the dnahub CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help                       show available commands
//	  - events [status]            list events
//	  - blog [featured]            list blog posts
//	  - projects [status]          list projects
//	  - subscribe | unsubscribe    manage the newsletter
//	  - contact                    send a message to the organisers
//	  - section <scrollY>          show the highlighted navigation section
//	  - stats                      show API request counters
//	  - exit | quit                leave the program
//
//	Not logged in:
//	  - register                   create an account
//	  - login                      authenticate
//
//	Logged in:
//	  - me                         show the signed-in profile
//	  - profile                    edit the profile
//	  - refresh                    renew the access token
//	  - logout                     sign out
//
// Handlers report failures to the user themselves; the REPL only prints the
// error text so the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("dna> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "me":
			cmdErr = a.Me(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "events":
			cmdErr = a.Events(ctx, args)

		case "blog":
			cmdErr = a.Blog(ctx, args)

		case "projects":
			cmdErr = a.Projects(ctx, args)

		case "subscribe":
			cmdErr = a.Subscribe(ctx)

		case "unsubscribe":
			cmdErr = a.Unsubscribe(ctx)

		case "contact":
			cmdErr = a.Contact(ctx)

		case "section":
			cmdErr = a.Section(ctx, args)

		case "stats":
			cmdErr = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil && !errors.Is(cmdErr, errReported) {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
