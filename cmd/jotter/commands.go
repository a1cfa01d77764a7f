package main

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"jotter/internal/client"
	"jotter/internal/types"
)

type commandRunner interface {
	Run(args []string) error
}

// commandClient is the slice of the HTTP client the commands use.
type commandClient interface {
	EnsureDaemon(ctx context.Context, expectedVersion string, restart bool) error
	StopDaemon(ctx context.Context) error
	Session() *types.AuthSession
	SignUp(ctx context.Context, email, password string) (*types.AuthSession, error)
	SignIn(ctx context.Context, email, password string) (*types.AuthSession, error)
	SignOut(ctx context.Context) error
	ListNotes(ctx context.Context, archived *bool) ([]types.Note, error)
	InsertNote(ctx context.Context, draft types.NoteDraft) (*types.Note, error)
	UpdateNote(ctx context.Context, id string, patch types.NotePatch) (*types.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

type clientFactory func() (commandClient, error)

type commandWiring struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	newClient    clientFactory
	runDaemon    func(opts daemonRunOptions) error
	killDaemon   func() error
	runUI        func(version string, restartDaemon bool) error
	readPassword func() ([]byte, error)
	version      string
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		newClient: newJotterClient,
		runDaemon: runDaemonProcess,
		killDaemon: func() error {
			return killDaemonWithFactory(newJotterClient)
		},
		runUI: runUIProcess,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
		version: buildVersion(),
	}
}

func newJotterClient() (commandClient, error) {
	c, err := client.New()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"daemon":  NewDaemonCommand(wiring.stderr, wiring.runDaemon, wiring.killDaemon),
		"ui":      NewUICommand(wiring.stderr, wiring.runUI, wiring.version),
		"signup":  NewAuthCommand(authCommandSignUp, wiring),
		"login":   NewAuthCommand(authCommandSignIn, wiring),
		"logout":  NewLogoutCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"ls":      NewLSCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"new":     NewNewCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"rm":      NewRmCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"archive": NewArchiveCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"export":  NewExportCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"import":  NewImportCommand(wiring.stdout, wiring.stderr, wiring.newClient),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr),
	}
}
