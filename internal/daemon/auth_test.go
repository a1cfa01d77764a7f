package daemon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-one"), time.Hour)
	token, expiresAt, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
}

func TestTokenIssuerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenIssuer([]byte("secret-one"), time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenIssuer([]byte("secret-two"), time.Hour).Verify(token); err == nil {
		t.Fatalf("expected verification to fail with a different secret")
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-one"), time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Verify(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTokenIssuerRevoke(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-one"), time.Hour)
	token, _, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	issuer.Revoke(claims)
	if _, err := issuer.Verify(token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthEndpointsFlow(t *testing.T) {
	server := newTestServer(t, 100)
	session := signUp(t, server, "  Reader@Example.com ")
	if session.Token == "" {
		t.Fatalf("expected token")
	}
	if session.User.Email != "reader@example.com" {
		t.Fatalf("expected normalized email, got %q", session.User.Email)
	}
	if session.User.PasswordHash != "" {
		t.Fatalf("password hash must not leave the daemon")
	}

	dup := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signup", "", SignUpRequest{Email: "reader@example.com", Password: "another-pass"})
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate signup, got %d", dup.StatusCode)
	}
	var dupBody errorResponse
	decodeBody(t, dup, &dupBody)
	if dupBody.Error != msgUserExists {
		t.Fatalf("expected %q, got %q", msgUserExists, dupBody.Error)
	}

	bad := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signin", "", SignInRequest{Email: "reader@example.com", Password: "wrong"})
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 on bad password, got %d", bad.StatusCode)
	}
	var badBody errorResponse
	decodeBody(t, bad, &badBody)
	if badBody.Error != msgInvalidCredentials {
		t.Fatalf("expected %q, got %q", msgInvalidCredentials, badBody.Error)
	}

	signin := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signin", "", SignInRequest{Email: "READER@example.com", Password: "secret-pass"})
	if signin.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on signin, got %d", signin.StatusCode)
	}
	var fresh struct {
		Token string `json:"token"`
	}
	decodeBody(t, signin, &fresh)

	me := doRequest(t, http.MethodGet, server.URL+"/v1/auth/me", fresh.Token, nil)
	if me.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on me, got %d", me.StatusCode)
	}

	out := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signout", fresh.Token, nil)
	if out.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on signout, got %d", out.StatusCode)
	}
	after := doRequest(t, http.MethodGet, server.URL+"/v1/auth/me", fresh.Token, nil)
	if after.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", after.StatusCode)
	}
	still := doRequest(t, http.MethodGet, server.URL+"/v1/auth/me", session.Token, nil)
	if still.StatusCode != http.StatusOK {
		t.Fatalf("expected other session to survive signout, got %d", still.StatusCode)
	}
}

func TestSignUpValidation(t *testing.T) {
	server := newTestServer(t, 100)
	resp := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signup", "", SignUpRequest{Email: "not-an-email", Password: "123"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Fields["email"] != "must be a valid email address" {
		t.Fatalf("unexpected email message %q", body.Fields["email"])
	}
	if body.Fields["password"] != "must be at least 6 characters" {
		t.Fatalf("unexpected password message %q", body.Fields["password"])
	}
}

func TestAuthRateLimit(t *testing.T) {
	server := newTestServer(t, 2)
	req := SignInRequest{Email: "nobody@example.com", Password: "whatever"}
	for i := 0; i < 2; i++ {
		resp := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signin", "", req)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, resp.StatusCode)
		}
	}
	resp := doRequest(t, http.MethodPost, server.URL+"/v1/auth/signin", "", req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestAuthRateLimitIgnoresForwardedHeaders(t *testing.T) {
	server := newTestServer(t, 2)
	body, err := json.Marshal(SignInRequest{Email: "nobody@example.com", Password: "whatever"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	limited := 0
	for i := 0; i < 10; i++ {
		req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/auth/signin", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("signin %d: %v", i, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 8 {
		t.Fatalf("expected 8 of 10 attempts limited despite rotating headers, got %d", limited)
	}
}
