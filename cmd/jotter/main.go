package main

import (
	"fmt"
	"os"
)

const usageText = `jotter keeps notes in a local daemon and edits them from the terminal.

Usage:
  jotter <command> [flags]

Commands:
  daemon   run the notes daemon
  ui       run the terminal UI
  signup   create an account and sign in
  login    sign in with an existing account
  logout   sign out and forget the stored session
  ls       list notes
  new      create a note
  rm       delete a note
  archive  archive or restore a note
  export   write notes as markdown files
  import   create notes from markdown files
  config   print configuration (effective or defaults)
  help     show help

Flags:
  -h, --help   show help

Daemon flags:
  --addr          listen address (overrides config)
  --background    run in background (logs to file)
  --force         stop any running daemon before starting
  --kill          stop any running daemon and exit

Examples:
  jotter login --email ada@example.com
  jotter ls --tag work --query plan
  jotter new --title "Groceries" --content "- milk" --tag home
  jotter export --dir ./notes
  jotter import './notes/**/*.md'
  jotter config --scope core --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdin, os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
