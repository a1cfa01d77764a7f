package daemon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jotter/internal/logging"
	"jotter/internal/store"
)

type Options struct {
	Secret         []byte
	SessionTTL     time.Duration
	AuthPerMinute  int
	CORSOrigins    []string
	TrustedProxies []string
	Logger         logging.Logger
}

type Daemon struct {
	addr    string
	version string
	repo    store.Repository
	opts    Options
	server  *http.Server
}

func New(addr, version string, repo store.Repository, opts Options) *Daemon {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Daemon{
		addr:    addr,
		version: version,
		repo:    repo,
		opts:    opts,
	}
}

// Handler wires services onto the repository and returns the router.
func (d *Daemon) Handler() (http.Handler, error) {
	if d.repo == nil {
		return nil, errors.New("repository is required")
	}
	if len(d.opts.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	issuer := NewTokenIssuer(d.opts.Secret, d.opts.SessionTTL)
	api := &API{
		Version:        d.version,
		Notes:          NewNoteService(d.repo.Notes()),
		Auth:           NewAuthService(d.repo.Users(), issuer),
		Issuer:         issuer,
		Logger:         d.opts.Logger,
		AuthPerMinute:  d.opts.AuthPerMinute,
		CORSOrigins:    d.opts.CORSOrigins,
		TrustedProxies: d.opts.TrustedProxies,
	}
	return api.Router(), nil
}

func (d *Daemon) Run(ctx context.Context) error {
	handler, err := d.Handler()
	if err != nil {
		return err
	}
	d.server = &http.Server{
		Addr:              d.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.opts.Logger.Info("daemon_listening",
			logging.F("addr", "http://"+d.addr),
			logging.F("storage", d.repo.Backend()),
			logging.F("version", d.version),
		)
		errCh <- d.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		d.opts.Logger.Info("daemon_stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
