package daemon

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"jotter/internal/store"
	"jotter/internal/types"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func newTestServer(t *testing.T, perMinute int) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	repo := store.NewFileRepository(store.RepositoryPaths{
		NotesPath: filepath.Join(dir, "notes.json"),
		UsersPath: filepath.Join(dir, "users.json"),
	})
	d := New("127.0.0.1:0", "test", repo, Options{
		Secret:        []byte("0123456789abcdef0123456789abcdef"),
		SessionTTL:    time.Hour,
		AuthPerMinute: perMinute,
	})
	handler, err := d.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signUp(t *testing.T, server *httptest.Server, email string) types.AuthSession {
	t.Helper()
	resp := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signup", "", SignUpRequest{Email: email, Password: "secret-pass"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d", email, resp.StatusCode)
	}
	var session types.AuthSession
	decodeBody(t, resp, &session)
	return session
}
