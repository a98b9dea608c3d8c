// Package forms holds the field validation rules for every write operation
// and the error map handed back to templates. Field errors are keyed by the
// form field name; anything that is not the user's input (auth, ownership,
// missing records, storage failures) goes under FormKey and renders as a
// banner above the form.
package forms

import (
	"regexp"
	"unicode/utf8"
)

// FormKey is the pseudo-field for errors that belong to the whole form.
const FormKey = "form"

// Errors maps a field name to its validation messages. An empty map means
// the operation succeeded; callers never get a partial success.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// HasErrors reports whether any field or form level message is present.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Form returns the form-level messages, if any.
func (e Errors) Form() []string {
	return e[FormKey]
}

// FormError builds an error set carrying a single form-level message.
func FormError(msg string) Errors {
	e := Errors{}
	e.Add(FormKey, msg)
	return e
}

var slugPattern = regexp.MustCompile(`^[a-z-]+$`)

// TopicForm validates input for creating a topic.
type TopicForm struct {
	Slug        string
	Description string
}

func (f TopicForm) Validate() Errors {
	errs := Errors{}
	if utf8.RuneCountInString(f.Slug) < 3 {
		errs.Add("slug", "Name must be at least 3 characters")
	}
	if !slugPattern.MatchString(f.Slug) {
		errs.Add("slug", "Name may only contain lowercase letters and hyphens")
	}
	if utf8.RuneCountInString(f.Description) < 10 {
		errs.Add("description", "Description must be at least 10 characters")
	}
	return errs
}

// PostForm validates input for creating or editing a post.
type PostForm struct {
	Title   string
	Content string
}

func (f PostForm) Validate() Errors {
	errs := Errors{}
	if utf8.RuneCountInString(f.Title) < 3 {
		errs.Add("title", "Title must be at least 3 characters")
	}
	if utf8.RuneCountInString(f.Content) < 10 {
		errs.Add("content", "Content must be at least 10 characters")
	}
	return errs
}

// CommentForm validates input for replying to a post or another comment.
type CommentForm struct {
	Content string
}

func (f CommentForm) Validate() Errors {
	errs := Errors{}
	if utf8.RuneCountInString(f.Content) < 3 {
		errs.Add("content", "Comment must be at least 3 characters")
	}
	return errs
}
