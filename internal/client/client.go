package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"jotter/internal/config"
	"jotter/internal/types"
)

var ErrNotAuthenticated = errors.New("not signed in; run `jotter login`")

type Client struct {
	baseURL     string
	sessionPath string
	http        *http.Client

	mu      sync.RWMutex
	session *types.AuthSession
}

// New builds a client for the configured daemon and loads any saved
// session.
func New() (*Client, error) {
	cfg, err := config.LoadCoreConfig()
	if err != nil {
		return nil, err
	}
	sessionPath, err := config.SessionPath()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:     cfg.DaemonBaseURL(),
		sessionPath: sessionPath,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if err := c.loadSession(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewWithBaseURL builds a client that keeps its session in memory only.
func NewWithBaseURL(baseURL, token string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if token != "" {
		c.session = &types.AuthSession{Token: token}
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Session returns the current session, nil when signed out.
func (c *Client) Session() *types.AuthSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	copy := *c.session
	return &copy
}

// UserID is the signed-in user's id, empty when signed out.
func (c *Client) UserID() string {
	if session := c.Session(); session != nil {
		return session.User.ID
	}
	return ""
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*types.AuthSession, error) {
	return c.authenticate(ctx, "/v1/auth/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*types.AuthSession, error) {
	return c.authenticate(ctx, "/v1/auth/signin", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*types.AuthSession, error) {
	req := CredentialsRequest{Email: strings.TrimSpace(email), Password: password}
	var session types.AuthSession
	if err := c.doJSON(ctx, http.MethodPost, path, req, false, &session); err != nil {
		return nil, err
	}
	if err := c.setSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the token remotely and always forgets it locally. A
// token the daemon already rejects is not an error.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Session() == nil {
		return nil
	}
	remoteErr := c.doJSON(ctx, http.MethodPost, "/v1/auth/signout", nil, true, nil)
	if apiErr := asAPIError(remoteErr); apiErr != nil && apiErr.StatusCode == http.StatusUnauthorized {
		remoteErr = nil
	}
	if err := c.setSession(nil); err != nil {
		return err
	}
	return remoteErr
}

func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListNotes(ctx context.Context, archived *bool) ([]types.Note, error) {
	path := "/v1/notes"
	if archived != nil {
		path += "?" + url.Values{"archived": []string{strconv.FormatBool(*archived)}}.Encode()
	}
	var resp NotesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, true, &resp); err != nil {
		return nil, err
	}
	if resp.Notes == nil {
		resp.Notes = []types.Note{}
	}
	return resp.Notes, nil
}

func (c *Client) InsertNote(ctx context.Context, draft types.NoteDraft) (*types.Note, error) {
	var note types.Note
	if err := c.doJSON(ctx, http.MethodPost, "/v1/notes", draft, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, patch types.NotePatch) (*types.Note, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("note id is required")
	}
	var note types.Note
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/notes/"+url.PathEscape(id), patch, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("note id is required")
	}
	return c.doJSON(ctx, http.MethodDelete, "/v1/notes/"+url.PathEscape(id), nil, true, nil)
}

// EnsureDaemon starts a background daemon when none answers, then waits for
// it to become healthy. With restart set, a daemon reporting a different
// version is stopped first.
func (c *Client) EnsureDaemon(ctx context.Context, expectedVersion string, restart bool) error {
	resp, err := c.Health(ctx)
	if err == nil && resp.OK {
		if expectedVersion == "" || resp.Version == expectedVersion {
			return nil
		}
		if !restart {
			return fmt.Errorf("daemon version mismatch: %s (expected %s)", resp.Version, expectedVersion)
		}
		if resp.PID <= 0 {
			return fmt.Errorf("daemon version mismatch: %s and no pid to stop", resp.Version)
		}
		if killErr := killProcess(resp.PID); killErr != nil {
			return fmt.Errorf("failed to stop stale daemon (pid %d): %w", resp.PID, killErr)
		}
		shutdownDeadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(shutdownDeadline) {
			if _, err := c.Health(ctx); err != nil {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	if err := startDaemon(); err != nil {
		return err
	}

	deadline := time.Now().Add(4 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := c.Health(ctx)
		if err == nil && resp.OK {
			if expectedVersion == "" || resp.Version == expectedVersion {
				return nil
			}
			lastErr = fmt.Errorf("daemon version mismatch: %s (expected %s)", resp.Version, expectedVersion)
		} else {
			lastErr = err
		}
		time.Sleep(150 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("daemon not healthy after start")
	}
	return lastErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		session := c.Session()
		if session == nil || strings.TrimSpace(session.Token) == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	httpClient := c.http
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var payload ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	if payload.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Error, Fields: payload.Fields}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsUnavailable reports whether err means no daemon is listening.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

var (
	killProcess = terminateProcess
	startDaemon = StartBackgroundDaemon
)

// StopDaemon signals the daemon process found through /health. A daemon
// that is not running is not an error.
func (c *Client) StopDaemon(ctx context.Context) error {
	resp, err := c.Health(ctx)
	if err != nil {
		if IsUnavailable(err) {
			return nil
		}
		return err
	}
	if resp == nil || resp.PID <= 0 {
		return nil
	}
	return killProcess(resp.PID)
}

func terminateProcess(pid int) error {
	if pid <= 0 {
		return errors.New("invalid pid")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		return proc.Kill()
	}
	return proc.Signal(syscall.SIGTERM)
}
