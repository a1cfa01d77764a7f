package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddTag(t *testing.T) {
	tags, added := AddTag(nil, "  Work ")
	assert.True(t, added)
	assert.Equal(t, []string{"work"}, tags)

	tags, added = AddTag(tags, "WORK")
	assert.False(t, added)
	assert.Equal(t, []string{"work"}, tags)

	_, added = AddTag(tags, "   ")
	assert.False(t, added)
}

func TestAddTagDoesNotAliasInput(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "a"
	first, _ := AddTag(base, "b")
	second, _ := AddTag(base, "c")
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "c"}, second)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "rust"}, NormalizeTags([]string{"Go", " go ", "", "RUST"}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}

func TestRemoveLastTag(t *testing.T) {
	assert.Equal(t, []string{"a"}, RemoveLastTag([]string{"a", "b"}))
	assert.Empty(t, RemoveLastTag(nil))
}

func TestSplitTagInput(t *testing.T) {
	complete, pending := SplitTagInput("Go, rust,,wip")
	assert.Equal(t, []string{"go", "rust"}, complete)
	assert.Equal(t, "wip", pending)

	complete, pending = SplitTagInput("draft")
	assert.Empty(t, complete)
	assert.Equal(t, "draft", pending)
}

func TestValidateForSave(t *testing.T) {
	fields := ValidateForSave("  ", "\n")
	assert.Equal(t, MsgTitleRequired, fields[FieldTitle])
	assert.Equal(t, MsgContentRequired, fields[FieldContent])

	assert.Nil(t, ValidateForSave("t", "c"))
	assert.Len(t, ValidateForSave("t", " "), 1)
}

func TestErrorKinds(t *testing.T) {
	err := wrap("update", "n1", NotFoundError("", "", nil))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "update n1: note not found", err.Error())

	err = wrap("load", "", errRemoteDown)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, errRemoteDown)

	verr := ValidationError("save", "n1", FieldErrors{FieldTitle: MsgTitleRequired})
	assert.ErrorIs(t, verr, ErrValidation)
	assert.Equal(t, MsgTitleRequired, FieldErrorsOf(verr)[FieldTitle])
	assert.Nil(t, FieldErrorsOf(err))
}
