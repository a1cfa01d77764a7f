package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"jotter/internal/config"
	"jotter/internal/daemon"
	"jotter/internal/logging"
	"jotter/internal/store"
)

type daemonRunOptions struct {
	Background bool
	Addr       string
}

type DaemonCommand struct {
	stderr     io.Writer
	runDaemon  func(opts daemonRunOptions) error
	killDaemon func() error
}

func NewDaemonCommand(stderr io.Writer, runDaemon func(opts daemonRunOptions) error, killDaemon func() error) *DaemonCommand {
	return &DaemonCommand{
		stderr:     stderr,
		runDaemon:  runDaemon,
		killDaemon: killDaemon,
	}
}

func (c *DaemonCommand) Run(args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	background := fs.Bool("background", false, "run in background (logs to file)")
	kill := fs.Bool("kill", false, "stop any running daemon and exit")
	force := fs.Bool("force", false, "stop any running daemon before starting")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *kill {
		return c.killDaemon()
	}
	if *force {
		if err := c.killDaemon(); err != nil {
			return err
		}
	}
	return c.runDaemon(daemonRunOptions{Background: *background, Addr: strings.TrimSpace(*addr)})
}

func runDaemonProcess(opts daemonRunOptions) error {
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return err
	}
	coreCfg, err := config.LoadCoreConfig()
	if err != nil {
		return err
	}

	logOpts := logging.Options{Level: logging.ParseLevel(coreCfg.LogLevel())}
	if opts.Background {
		logPath, err := config.DaemonLogPath()
		if err != nil {
			return err
		}
		logOpts.File = logPath
	} else {
		logOpts.Console = os.Stderr
	}
	logger, flush := logging.New(logOpts)
	defer func() { _ = flush() }()

	secretPath, err := config.SecretPath()
	if err != nil {
		return err
	}
	secret, err := daemon.LoadOrCreateSecret(secretPath)
	if err != nil {
		return err
	}

	paths, err := repositoryPaths()
	if err != nil {
		return err
	}
	repo, err := store.OpenRepository(paths, coreCfg.StorageBackend())
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.SeedRepositoryFromFiles(ctx, repo, paths); err != nil {
		logger.Warn("repository_seed_failed", logging.F("error", err))
	}

	pidPath, err := config.PIDPath()
	if err != nil {
		return err
	}
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o600); err != nil {
		logger.Warn("pid_file_write_failed", logging.F("path", pidPath), logging.F("error", err))
	}
	defer os.Remove(pidPath)

	addr := opts.Addr
	if addr == "" {
		addr = coreCfg.DaemonAddress()
	}
	d := daemon.New(addr, buildVersion(), repo, daemon.Options{
		Secret:         secret,
		SessionTTL:     coreCfg.SessionTTL(),
		AuthPerMinute:  coreCfg.AuthRatePerMinute(),
		CORSOrigins:    coreCfg.CORSOrigins(),
		TrustedProxies: coreCfg.TrustedProxies(),
		Logger:         logger,
	})
	return d.Run(ctx)
}

func repositoryPaths() (store.RepositoryPaths, error) {
	notesPath, err := config.NotesPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	usersPath, err := config.UsersPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	dbPath, err := config.BboltPath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	sqlitePath, err := config.SQLitePath()
	if err != nil {
		return store.RepositoryPaths{}, err
	}
	return store.RepositoryPaths{
		NotesPath:  notesPath,
		UsersPath:  usersPath,
		DBPath:     dbPath,
		SQLitePath: sqlitePath,
	}, nil
}

func killDaemonWithFactory(newClient clientFactory) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := newClient()
	if err != nil {
		return err
	}
	return c.StopDaemon(ctx)
}
