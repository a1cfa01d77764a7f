package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"jotter/internal/types"
)

// loadSession restores a saved session. Missing or unreadable files mean
// signed out; a stale token is rejected later by the daemon.
func (c *Client) loadSession() error {
	if strings.TrimSpace(c.sessionPath) == "" {
		return nil
	}
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var session types.AuthSession
	if err := json.Unmarshal(data, &session); err != nil || session.Token == "" {
		return nil
	}
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()
	return nil
}

// setSession replaces the in-memory session and mirrors it to disk. A nil
// session removes the file.
func (c *Client) setSession(session *types.AuthSession) error {
	c.mu.Lock()
	if session != nil {
		copy := *session
		c.session = &copy
	} else {
		c.session = nil
	}
	c.mu.Unlock()

	if strings.TrimSpace(c.sessionPath) == "" {
		return nil
	}
	if session == nil {
		if err := os.Remove(c.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0o700); err != nil {
		return err
	}
	tmp := c.sessionPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.sessionPath)
}
