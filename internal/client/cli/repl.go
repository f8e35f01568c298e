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

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Analyses(ctx context.Context) error
	AddAnalysis(ctx context.Context) error
	Appointments(ctx context.Context) error
	AddAppointment(ctx context.Context) error
	EditAppointment(ctx context.Context, id string) error
	DeleteAppointment(ctx context.Context, id string) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Settings(ctx context.Context) error
	Set(ctx context.Context, key, value string) error
	ResetSettings(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context, path string) error
	Purge(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, settings, set, resetsettings, export, import, purge, exit"
	helpLoggedIn  = "Available commands: dashboard, analyses, addanalysis, appointments, addappointment, " +
		"editappointment <id>, deleteappointment <id>, profile, editprofile, password, whoami, " +
		"settings, set <key> <value>, resetsettings, export, import <file>, purge, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the medbook CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Commands that need a session print a notice instead of running when the
// user is logged out. Errors returned by handlers are ignored here; handlers
// print their own messages, so one failed command never ends the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("medbook %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsSession(cmd) && !a.isLoggedIn() {
			printlnFn("Эта команда доступна после входа (login или register)")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)
		case "analyses":
			_ = a.Analyses(ctx)
		case "addanalysis":
			_ = a.AddAnalysis(ctx)
		case "appointments":
			_ = a.Appointments(ctx)
		case "addappointment":
			_ = a.AddAppointment(ctx)
		case "editappointment", "deleteappointment":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			if cmd == "editappointment" {
				_ = a.EditAppointment(ctx, args[0])
			} else {
				_ = a.DeleteAppointment(ctx, args[0])
			}

		case "profile":
			_ = a.Profile(ctx)
		case "editprofile":
			_ = a.EditProfile(ctx)
		case "password":
			_ = a.ChangePassword(ctx)

		case "settings":
			_ = a.Settings(ctx)
		case "set":
			if len(args) < 2 {
				printlnFn("Usage: set <key> <value>")
				continue
			}
			_ = a.Set(ctx, args[0], strings.Join(args[1:], " "))
		case "resetsettings":
			_ = a.ResetSettings(ctx)
		case "export":
			_ = a.Export(ctx)
		case "import":
			if len(args) == 0 {
				printlnFn("Usage: import <file>")
				continue
			}
			_ = a.Import(ctx, strings.Join(args, " "))
		case "purge":
			_ = a.Purge(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func needsSession(cmd string) bool {
	switch cmd {
	case "logout", "whoami", "dashboard", "analyses", "addanalysis", "appointments", "addappointment",
		"editappointment", "deleteappointment", "profile", "editprofile", "password":
		return true
	}
	return false
}
