// Package forms validates raw form input before anything touches the data
// store. Each entity gets its own form type; all of them implement the shared
// Form interface so handlers can treat them uniformly.
package forms

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTopicLen is the maximum length of a topic title, in characters.
	MaxTopicLen = 200
	// MaxUsernameLen is the maximum length of a username, in characters.
	MaxUsernameLen = 150
	// MinPasswordLen is the minimum accepted password length.
	MinPasswordLen = 8
)

// Errors maps a field name to its validation message.
type Errors map[string]string

// Form is implemented by every form type. Validate returns nil when the
// input is acceptable; otherwise it returns per-field messages. Validate
// trims surrounding whitespace on text fields as a side effect.
type Form interface {
	Validate() Errors
}

// TopicForm validates input for creating a topic.
type TopicForm struct {
	Text string `json:"text"`
}

func (f *TopicForm) Validate() Errors {
	f.Text = strings.TrimSpace(f.Text)
	errs := Errors{}
	if f.Text == "" {
		errs["text"] = "this field is required"
	} else if utf8.RuneCountInString(f.Text) > MaxTopicLen {
		errs["text"] = "ensure this value has at most 200 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// EntryForm validates input for creating or editing an entry. Entry text is
// unbounded in length but must not be empty.
type EntryForm struct {
	Text string `json:"text"`
}

func (f *EntryForm) Validate() Errors {
	f.Text = strings.TrimSpace(f.Text)
	if f.Text == "" {
		return Errors{"text": "this field is required"}
	}
	return nil
}

// RegisterForm validates input for creating a user account. Password1 is the
// chosen password, Password2 the confirmation.
type RegisterForm struct {
	Username  string `json:"username"`
	Password1 string `json:"-"`
	Password2 string `json:"-"`
}

func (f *RegisterForm) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	errs := Errors{}
	if f.Username == "" {
		errs["username"] = "this field is required"
	} else if utf8.RuneCountInString(f.Username) > MaxUsernameLen {
		errs["username"] = "ensure this value has at most 150 characters"
	}
	if f.Password1 == "" {
		errs["password1"] = "this field is required"
	} else if utf8.RuneCountInString(f.Password1) < MinPasswordLen {
		errs["password1"] = "password must contain at least 8 characters"
	}
	if f.Password2 != f.Password1 {
		errs["password2"] = "the two password fields didn't match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// LoginForm validates posted credentials. Credential correctness is checked
// by the auth handler, not here.
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

func (f *LoginForm) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	errs := Errors{}
	if f.Username == "" {
		errs["username"] = "this field is required"
	}
	if f.Password == "" {
		errs["password"] = "this field is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
