package prompt

import (
	"context"
	"fmt"
)

// Scripted answers prompts from a fixed list of raw inputs, as if typed at
// a terminal, and records every prompt asked. When the script runs out it
// behaves like closed input.
type Scripted struct {
	Inputs []string
	Asked  []Prompt
}

// NewScripted returns an asker that replays inputs.
func NewScripted(inputs ...string) *Scripted {
	return &Scripted{Inputs: inputs}
}

// Ask implements Asker.
func (s *Scripted) Ask(ctx context.Context, p Prompt) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	s.Asked = append(s.Asked, p)

	for len(s.Inputs) > 0 {
		input := s.Inputs[0]
		s.Inputs = s.Inputs[1:]
		if input == "" {
			input = p.Default
		}
		if ans, err := Parse(p, input); err == nil {
			return ans, nil
		}
	}

	if p.Default == "" || p.RequireAnswer {
		return Answer{}, ErrInputClosed
	}
	return Parse(p, p.Default)
}

// Messages returns the messages of every prompt asked so far.
func (s *Scripted) Messages() []string {
	msgs := make([]string, len(s.Asked))
	for i, p := range s.Asked {
		msgs[i] = p.Message
	}
	return msgs
}

// Remaining reports unconsumed inputs, for test assertions.
func (s *Scripted) Remaining() string {
	return fmt.Sprintf("%q", s.Inputs)
}
