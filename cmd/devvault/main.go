package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Nymos1111/dev-password-organizer/internal/config"
)

const cliVersion = "0.1.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func userErrorf(format string, args ...any) userError {
	return userError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	name  string
	usage string
	run   func(s *session, args []string) error
}

var commands = []command{
	{"add-project", "create or replace a project", runAddProject},
	{"list-projects", "list projects and their credentials", runListProjects},
	{"remove-project", "delete a project and its credentials", runRemoveProject},
	{"add-credential", "add or replace a database credential", runAddCredential},
	{"remove-credential", "delete a credential from a project", runRemoveCredential},
	{"show", "print a credential including its password", runShow},
	{"change-password", "re-encrypt the vault under a new master password", runChangePassword},
	{"load", "verify the master password and decrypt the vault", runLoad},
	{"save", "re-encrypt and write the vault, creating it if needed", runSave},
	{"generate", "print a random database password", runGenerate},
	{"shell", "interactive menu", runShell},
}

func main() {
	handleError(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func handleError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}

	slog.Error("unexpected error", "error", err)
	os.Exit(2)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return userError{msg: err.Error()}
	}

	fs := flag.NewFlagSet("devvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("file", cfg.VaultPath, "vault file")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		printUsage(stderr)
		return userError{msg: "invalid arguments"}
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if fs.NArg() == 0 {
		printUsage(stderr)
		return userError{msg: "missing command"}
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	if name == "version" {
		fmt.Fprintln(stdout, cliVersion)
		return nil
	}

	for _, c := range commands {
		if c.name == name {
			return c.run(newSession(*path, stdin, stdout, stderr), rest)
		}
	}

	printUsage(stderr)
	return userErrorf("unknown command %q", name)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: devvault [-file path] [-v] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-18s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(w, "  %-18s %s\n", "version", "print the version")
}
