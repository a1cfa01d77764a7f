package notes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
)

var (
	ErrNetwork    = errors.New("network or service error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("note not found")
)

const (
	FieldTitle   = "title"
	FieldContent = "content"

	MsgTitleRequired   = "Add a descriptive title first"
	MsgContentRequired = "Oops, you cannot add a new note without some content about the note."
)

// FieldErrors maps a field name to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+f[key])
	}
	return strings.Join(parts, "; ")
}

// Error is the result type of every failing core operation.
type Error struct {
	Kind   Kind
	Op     string
	ID     string
	Fields FieldErrors
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.ID != "" {
			b.WriteString(" " + e.ID)
		}
		b.WriteString(": ")
	}
	switch {
	case len(e.Fields) > 0:
		b.WriteString(e.Fields.String())
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.sentinel().Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrNetwork
	}
}

func NetworkError(op, id string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, ID: id, Err: err}
}

func NotFoundError(op, id string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, ID: id, Err: err}
}

func ValidationError(op, id string, fields FieldErrors) *Error {
	return &Error{Kind: KindValidation, Op: op, ID: id, Fields: fields}
}

// FieldErrorsOf extracts field messages from a validation error.
func FieldErrorsOf(err error) FieldErrors {
	var coreErr *Error
	if errors.As(err, &coreErr) && coreErr.Kind == KindValidation {
		return coreErr.Fields
	}
	return nil
}

// ValidateForSave applies the save-time rule: trimmed title and content
// must both be non-empty.
func ValidateForSave(title, content string) FieldErrors {
	fields := FieldErrors{}
	if strings.TrimSpace(title) == "" {
		fields[FieldTitle] = MsgTitleRequired
	}
	if strings.TrimSpace(content) == "" {
		fields[FieldContent] = MsgContentRequired
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// wrap tags a remote failure with the operation. Errors the remote already
// classified keep their kind.
func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var coreErr *Error
	if errors.As(err, &coreErr) {
		out := *coreErr
		out.Op = op
		if out.ID == "" {
			out.ID = id
		}
		return &out
	}
	return NetworkError(op, id, fmt.Errorf("remote: %w", err))
}
