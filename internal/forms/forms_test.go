package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicForm(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantField string
	}{
		{name: "valid", text: "test"},
		{name: "exactly 200 characters", text: strings.Repeat("1234567890", 20)},
		{name: "201 characters", text: strings.Repeat("1234567890", 20) + "1", wantField: "text"},
		{name: "empty", text: "", wantField: "text"},
		{name: "whitespace only", text: "   \t", wantField: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TopicForm{Text: tt.text}
			errs := f.Validate()
			if tt.wantField == "" {
				assert.Nil(t, errs)
			} else {
				assert.Contains(t, errs, tt.wantField)
			}
		})
	}
}

func TestTopicFormTrimsWhitespace(t *testing.T) {
	f := &TopicForm{Text: "  chess  "}
	assert.Nil(t, f.Validate())
	assert.Equal(t, "chess", f.Text)
}

func TestEntryForm(t *testing.T) {
	f := &EntryForm{Text: "testtesttesttesttest"}
	assert.Nil(t, f.Validate())

	// Entry text has no upper bound.
	long := &EntryForm{Text: strings.Repeat("x", 10_000)}
	assert.Nil(t, long.Validate())

	empty := &EntryForm{Text: ""}
	assert.Contains(t, empty.Validate(), "text")

	blank := &EntryForm{Text: "  "}
	assert.Contains(t, blank.Validate(), "text")
}

func TestRegisterForm(t *testing.T) {
	tests := []struct {
		name      string
		form      RegisterForm
		wantField string
	}{
		{name: "valid", form: RegisterForm{Username: "testuser", Password1: "sup3rsecret", Password2: "sup3rsecret"}},
		{name: "missing username", form: RegisterForm{Password1: "sup3rsecret", Password2: "sup3rsecret"}, wantField: "username"},
		{name: "username too long", form: RegisterForm{Username: strings.Repeat("a", 151), Password1: "sup3rsecret", Password2: "sup3rsecret"}, wantField: "username"},
		{name: "password too short", form: RegisterForm{Username: "testuser", Password1: "short", Password2: "short"}, wantField: "password1"},
		{name: "passwords do not match", form: RegisterForm{Username: "testuser", Password1: "sup3rsecret", Password2: "sup3rsecreT"}, wantField: "password2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.form.Validate()
			if tt.wantField == "" {
				assert.Nil(t, errs)
			} else {
				assert.Contains(t, errs, tt.wantField)
			}
		})
	}
}

func TestLoginForm(t *testing.T) {
	valid := &LoginForm{Username: "testuser", Password: "123"}
	assert.Nil(t, valid.Validate())

	missing := &LoginForm{}
	errs := missing.Validate()
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
}
