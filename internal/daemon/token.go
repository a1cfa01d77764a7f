package daemon

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const secretBytes = 32

// LoadOrCreateSecret returns the token signing secret stored at path,
// generating and persisting a new one on first run.
func LoadOrCreateSecret(path string) ([]byte, error) {
	if secret, err := readSecret(path); err == nil && len(secret) > 0 {
		_ = os.Chmod(path, 0o600)
		return secret, nil
	} else if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(buf)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return buf, nil
}

func readSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	secret, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, errors.New("secret file is not valid base64")
	}
	return secret, nil
}
