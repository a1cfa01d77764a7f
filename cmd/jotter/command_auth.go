package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

type authCommandMode int

const (
	authCommandSignIn authCommandMode = iota
	authCommandSignUp
)

// AuthCommand signs in or signs up. The password is read from the terminal
// without echo.
type AuthCommand struct {
	mode         authCommandMode
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	newClient    clientFactory
	readPassword func() ([]byte, error)
}

func NewAuthCommand(mode authCommandMode, wiring commandWiring) *AuthCommand {
	return &AuthCommand{
		mode:         mode,
		stdin:        wiring.stdin,
		stdout:       wiring.stdout,
		stderr:       wiring.stderr,
		newClient:    wiring.newClient,
		readPassword: wiring.readPassword,
	}
}

func (c *AuthCommand) name() string {
	if c.mode == authCommandSignUp {
		return "signup"
	}
	return "login"
}

func (c *AuthCommand) Run(args []string) error {
	fs := flag.NewFlagSet(c.name(), flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	address := strings.TrimSpace(*email)
	if address == "" {
		fmt.Fprint(c.stdout, "Email: ")
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		address = strings.TrimSpace(line)
	}
	if address == "" {
		return errors.New("email is required")
	}
	password, err := c.prompt("Password: ")
	if err != nil {
		return err
	}
	if c.mode == authCommandSignUp {
		confirm, err := c.prompt("Confirm password: ")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := connect(ctx, c.newClient, false)
	if err != nil {
		return err
	}
	if c.mode == authCommandSignUp {
		_, err = api.SignUp(ctx, address, password)
	} else {
		_, err = api.SignIn(ctx, address, password)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "signed in as %s\n", address)
	return nil
}

func (c *AuthCommand) prompt(label string) (string, error) {
	fmt.Fprint(c.stdout, label)
	raw, err := c.readPassword()
	fmt.Fprintln(c.stdout)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type LogoutCommand struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func NewLogoutCommand(stdout, stderr io.Writer, newClient clientFactory) *LogoutCommand {
	return &LogoutCommand{stdout: stdout, stderr: stderr, newClient: newClient}
}

func (c *LogoutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	api, err := c.newClient()
	if err != nil {
		return err
	}
	if api.Session() == nil {
		fmt.Fprintln(c.stdout, "not signed in")
		return nil
	}
	if err := api.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "signed out")
	return nil
}
