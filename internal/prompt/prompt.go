// Package prompt defines the question/answer protocol between the init
// flow and the user, and a line-oriented terminal implementation of it.
package prompt

import (
	"context"
	"errors"
	"strconv"
)

// ErrInputClosed is returned when input ends before a prompt without a
// default value, or one marked RequireAnswer, is answered.
var ErrInputClosed = errors.New("input closed before the question was answered")

// Kind is the shape of answer a prompt expects.
type Kind int

const (
	// Confirm expects yes or no.
	Confirm Kind = iota + 1
	// Menu expects the 1-based number of one of Options.
	Menu
	// Text expects free text.
	Text
)

func (k Kind) String() string {
	switch k {
	case Confirm:
		return "confirm"
	case Menu:
		return "menu"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Prompt is one question.
//
// Default is used when the user just presses enter and when input ends:
// "y" or "n" for Confirm, the 1-based option number for Menu, and any text
// for Text. An empty Default means an answer is required.
type Prompt struct {
	Kind    Kind
	Message string
	Options []string
	Default string

	// RequireAnswer makes closed input fail with ErrInputClosed even when
	// Default is set. Enter still selects Default.
	RequireAnswer bool
}

// Answer is the reply to a Prompt. Only the field matching the prompt's
// Kind is set. Choice is 1-based.
type Answer struct {
	Confirmed bool
	Choice    int
	Text      string
}

// Asker answers prompts.
type Asker interface {
	Ask(ctx context.Context, p Prompt) (Answer, error)
}

// YesNo builds a Confirm prompt.
func YesNo(message string, defaultYes bool) Prompt {
	def := "n"
	if defaultYes {
		def = "y"
	}
	return Prompt{Kind: Confirm, Message: message, Default: def}
}

// Choose builds a Menu prompt. defaultChoice of 0 means no default.
func Choose(message string, options []string, defaultChoice int) Prompt {
	p := Prompt{Kind: Menu, Message: message, Options: options}
	if defaultChoice > 0 {
		p.Default = strconv.Itoa(defaultChoice)
	}
	return p
}

// Input builds a Text prompt.
func Input(message, def string) Prompt {
	return Prompt{Kind: Text, Message: message, Default: def}
}
