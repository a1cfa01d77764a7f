package main

import (
	"context"
	"flag"
	"io"
	"time"

	"jotter/internal/app"
	"jotter/internal/client"
	"jotter/internal/config"
	"jotter/internal/logging"
	"jotter/internal/prefs"
)

type UICommand struct {
	stderr  io.Writer
	runUI   func(version string, restartDaemon bool) error
	version string
}

func NewUICommand(stderr io.Writer, runUI func(version string, restartDaemon bool) error, version string) *UICommand {
	return &UICommand{
		stderr:  stderr,
		runUI:   runUI,
		version: version,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	restartDaemon := fs.Bool("restart-daemon", false, "restart daemon if version mismatch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.runUI(c.version, *restartDaemon)
}

func runUIProcess(version string, restartDaemon bool) error {
	coreCfg, err := config.LoadCoreConfig()
	if err != nil {
		return err
	}
	uiCfg, err := config.LoadUIConfig()
	if err != nil {
		return err
	}
	logPath, err := config.UILogPath()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI; logs go to file only.
	logger, flush := logging.New(logging.Options{File: logPath, Level: logging.ParseLevel(coreCfg.LogLevel())})
	defer func() { _ = flush() }()

	api, err := client.New()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = api.EnsureDaemon(ctx, version, restartDaemon)
	cancel()
	if err != nil {
		return err
	}

	prefStore, err := prefs.DefaultStore()
	if err != nil {
		return err
	}
	keys := app.NewKeybindings(uiCfg.Keybindings)
	if conflicts := keys.Conflicts(); len(conflicts) > 0 {
		logger.Warn("keybinding_conflicts", logging.F("keys", conflicts))
	}
	return app.Run(app.Options{
		Auth:           api,
		Remote:         client.NewRemoteStore(api),
		Preferences:    prefs.Init(prefStore, logger),
		Logger:         logger,
		Keybindings:    keys,
		CellWidth:      uiCfg.CellWidth(),
		ConfirmDelete:  uiCfg.ShouldConfirmDelete(),
		SearchDebounce: uiCfg.SearchDebounceInterval(),
		AutosaveQuiet:  uiCfg.AutosaveQuietPeriod(),
	})
}
