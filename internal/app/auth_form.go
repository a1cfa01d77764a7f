package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"

	"jotter/internal/client"
)

type authMode int

const (
	authModeSignIn authMode = iota
	authModeSignUp
)

const (
	authFieldEmail    = "email"
	authFieldPassword = "password"
	authFieldConfirm  = "confirm"
	minPasswordLength = 6
)

var emailValidator = validator.New()

// AuthForm is the sign-in / sign-up screen. Fields are validated locally
// before any request is made.
type AuthForm struct {
	mode       authMode
	email      textinput.Model
	password   textinput.Model
	confirm    textinput.Model
	focus      int
	errs       map[string]string
	remoteErr  string
	submitting bool
}

func NewAuthForm() *AuthForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	confirm := password
	confirm.Placeholder = "confirm password"

	f := &AuthForm{email: email, password: password, confirm: confirm}
	f.applyFocus()
	return f
}

func (f *AuthForm) Mode() authMode { return f.mode }

func (f *AuthForm) Submitting() bool { return f.submitting }

func (f *AuthForm) ToggleMode() {
	if f.mode == authModeSignIn {
		f.mode = authModeSignUp
	} else {
		f.mode = authModeSignIn
		f.confirm.SetValue("")
		if f.focus > 1 {
			f.focus = 1
		}
	}
	f.errs = nil
	f.remoteErr = ""
	f.applyFocus()
}

// Reset clears every field, as after sign-out.
func (f *AuthForm) Reset() {
	f.email.SetValue("")
	f.password.SetValue("")
	f.confirm.SetValue("")
	f.mode = authModeSignIn
	f.focus = 0
	f.errs = nil
	f.remoteErr = ""
	f.submitting = false
	f.applyFocus()
}

func (f *AuthForm) fieldCount() int {
	if f.mode == authModeSignUp {
		return 3
	}
	return 2
}

func (f *AuthForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.email, &f.password, &f.confirm}[:f.fieldCount()]
}

func (f *AuthForm) applyFocus() {
	for i, input := range []*textinput.Model{&f.email, &f.password, &f.confirm} {
		if i == f.focus {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

// Update handles a key. It reports true when the form should be submitted.
func (f *AuthForm) Update(msg tea.KeyMsg) (bool, tea.Cmd) {
	if f.submitting {
		return false, nil
	}
	switch msg.String() {
	case "tab", "down":
		f.focus = (f.focus + 1) % f.fieldCount()
		f.applyFocus()
		return false, nil
	case "shift+tab", "up":
		f.focus = (f.focus + f.fieldCount() - 1) % f.fieldCount()
		f.applyFocus()
		return false, nil
	case "ctrl+u":
		f.ToggleMode()
		return false, nil
	case "enter":
		if f.focus < f.fieldCount()-1 {
			f.focus++
			f.applyFocus()
			return false, nil
		}
		return true, nil
	}
	input := f.inputs()[f.focus]
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	if f.errs != nil {
		delete(f.errs, f.fieldName(f.focus))
	}
	return false, cmd
}

func (f *AuthForm) fieldName(i int) string {
	switch i {
	case 0:
		return authFieldEmail
	case 1:
		return authFieldPassword
	default:
		return authFieldConfirm
	}
}

// Validate records and returns field messages; nil means valid.
func (f *AuthForm) Validate() map[string]string {
	errs := validateCredentials(f.email.Value(), f.password.Value(), f.confirm.Value(), f.mode == authModeSignUp)
	f.errs = errs
	f.remoteErr = ""
	return errs
}

func validateCredentials(email, password, confirm string, signUp bool) map[string]string {
	errs := map[string]string{}
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs[authFieldEmail] = "Email is required"
	case emailValidator.Var(email, "email") != nil:
		errs[authFieldEmail] = "Please enter a valid email"
	}
	switch {
	case password == "":
		errs[authFieldPassword] = "Password is required"
	case len([]rune(password)) < minPasswordLength:
		errs[authFieldPassword] = "Password must be at least 6 characters"
	}
	if signUp && password != confirm {
		errs[authFieldConfirm] = "Passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *AuthForm) Credentials() (string, string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

func (f *AuthForm) BeginSubmit() {
	f.submitting = true
	f.remoteErr = ""
}

// Finish ends a submission. A failure keeps the typed email and clears
// the password fields.
func (f *AuthForm) Finish(err error) {
	f.submitting = false
	if err == nil {
		f.Reset()
		return
	}
	f.remoteErr = friendlyAuthError(err)
	f.password.SetValue("")
	f.confirm.SetValue("")
	f.focus = 1
	f.applyFocus()
}

func (f *AuthForm) FieldError(name string) string {
	return f.errs[name]
}

func (f *AuthForm) RemoteError() string {
	return f.remoteErr
}

// friendlyAuthError maps daemon messages to text suited for the form.
func friendlyAuthError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch strings.TrimSpace(apiErr.Message) {
		case "Invalid login credentials":
			return "Invalid email or password"
		case "Email not confirmed":
			return "Please check your email and confirm your account"
		case "User already registered":
			return "An account with this email already exists"
		}
		if apiErr.StatusCode == 429 {
			return "Too many attempts, please wait a minute"
		}
		return apiErr.Message
	}
	if client.IsUnavailable(err) {
		return "Cannot reach the notes service"
	}
	return err.Error()
}

func (f *AuthForm) View(width int, t theme) string {
	heading := "Sign in to jotter"
	switchHint := "ctrl+u: create an account"
	submit := "Sign in"
	if f.mode == authModeSignUp {
		heading = "Create your jotter account"
		switchHint = "ctrl+u: sign in instead"
		submit = "Sign up"
	}
	if f.submitting {
		submit = "Please wait..."
	}
	fieldWidth := max(20, min(width-4, 48))
	labels := []string{"Email", "Password", "Confirm password"}
	lines := []string{t.header.Render(heading), ""}
	for i, input := range f.inputs() {
		input.Width = fieldWidth
		label := labels[i]
		if i == f.focus {
			label = t.accent.Render("› " + label)
		} else {
			label = "  " + label
		}
		lines = append(lines, label, "  "+input.View())
		if msg := f.errs[f.fieldName(i)]; msg != "" {
			lines = append(lines, "  "+errorStyle.Render(msg))
		}
		lines = append(lines, "")
	}
	if f.remoteErr != "" {
		lines = append(lines, errorStyle.Render(f.remoteErr), "")
	}
	lines = append(lines, t.button.Render(submit), "", helpStyle.Render(switchHint+" • enter: next / submit • ctrl+c: quit"))
	return strings.Join(lines, "\n")
}
