package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"jotter/internal/client"
)

func TestValidateCredentials(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		confirm  string
		signUp   bool
		want     map[string]string
	}{
		{name: "valid sign in", email: "ada@example.com", password: "secret"},
		{name: "missing email", password: "secret", want: map[string]string{authFieldEmail: "Email is required"}},
		{name: "bad email", email: "ada", password: "secret", want: map[string]string{authFieldEmail: "Please enter a valid email"}},
		{name: "missing password", email: "ada@example.com", want: map[string]string{authFieldPassword: "Password is required"}},
		{name: "short password", email: "ada@example.com", password: "12345", want: map[string]string{authFieldPassword: "Password must be at least 6 characters"}},
		{name: "mismatch on sign up", email: "ada@example.com", password: "secret", confirm: "secrex", signUp: true, want: map[string]string{authFieldConfirm: "Passwords do not match"}},
		{name: "confirm ignored on sign in", email: "ada@example.com", password: "secret", confirm: "other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := validateCredentials(tc.email, tc.password, tc.confirm, tc.signUp)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for field, msg := range tc.want {
				if got[field] != msg {
					t.Fatalf("field %s: expected %q, got %q", field, msg, got[field])
				}
			}
		})
	}
}

func TestFriendlyAuthError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&client.APIError{StatusCode: 401, Message: "Invalid login credentials"}, "Invalid email or password"},
		{&client.APIError{StatusCode: 409, Message: "User already registered"}, "An account with this email already exists"},
		{&client.APIError{StatusCode: 403, Message: "Email not confirmed"}, "Please check your email and confirm your account"},
		{&client.APIError{StatusCode: 429, Message: "slow down"}, "Too many attempts, please wait a minute"},
		{&client.APIError{StatusCode: 400, Message: "bad request"}, "bad request"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		if got := friendlyAuthError(tc.err); got != tc.want {
			t.Fatalf("friendlyAuthError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestAuthFormToggleAndFinish(t *testing.T) {
	form := NewAuthForm()
	form.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if form.Mode() != authModeSignUp || len(form.inputs()) != 3 {
		t.Fatalf("expected sign up mode with three fields")
	}
	form.email.SetValue("ada@example.com")
	form.password.SetValue("secret")
	form.confirm.SetValue("secret")
	form.focus = 2
	submit, _ := form.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !submit {
		t.Fatalf("expected enter on last field to submit")
	}
	form.BeginSubmit()
	if submit, _ := form.Update(tea.KeyMsg{Type: tea.KeyEnter}); submit {
		t.Fatalf("expected no resubmission while submitting")
	}
	form.Finish(&client.APIError{StatusCode: 409, Message: "User already registered"})
	if form.email.Value() != "ada@example.com" {
		t.Fatalf("expected email kept after failure")
	}
	if form.password.Value() != "" || form.confirm.Value() != "" {
		t.Fatalf("expected passwords cleared after failure")
	}
	if form.RemoteError() != "An account with this email already exists" {
		t.Fatalf("unexpected remote error %q", form.RemoteError())
	}

	form.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if form.Mode() != authModeSignIn || form.focus > 1 {
		t.Fatalf("expected sign in mode with focus clamped, got focus %d", form.focus)
	}
	form.Finish(nil)
	if form.email.Value() != "" || form.RemoteError() != "" {
		t.Fatalf("expected reset after success")
	}
}
