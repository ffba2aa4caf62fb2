package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// InvalidInputMessage is printed before a prompt is asked again.
const InvalidInputMessage = "Invalid input, please try again"

// Terminal asks prompts on a line-oriented text stream.
type Terminal struct {
	out    io.Writer
	reader *bufio.Reader
	lines  chan lineResult
	once   sync.Once
}

type lineResult struct {
	text string
	err  error
}

// NewTerminal returns an asker reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, reader: bufio.NewReader(in), lines: make(chan lineResult)}
}

// readLoop feeds lines to Ask. Reads happen on their own goroutine so a
// blocked read does not keep Ask from returning on cancellation. After a
// cancelled Ask the goroutine stays parked on the send until the next Ask
// or process exit; it is never stopped.
func (t *Terminal) readLoop() {
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil && line != "" {
			err = nil
		}
		t.lines <- lineResult{text: strings.TrimRight(line, "\r\n"), err: err}
		if err != nil {
			close(t.lines)
			return
		}
	}
}

// Ask implements Asker. Answers of the wrong shape print
// InvalidInputMessage and the prompt is asked again.
func (t *Terminal) Ask(ctx context.Context, p Prompt) (Answer, error) {
	t.once.Do(func() { go t.readLoop() })
	for {
		t.render(p)

		line, err := t.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(t.out)
				if p.Default == "" || p.RequireAnswer {
					return Answer{}, ErrInputClosed
				}
				return Parse(p, p.Default)
			}
			return Answer{}, err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			input = p.Default
		}
		ans, err := Parse(p, input)
		if err == nil {
			return ans, nil
		}
		fmt.Fprintln(t.out, color.New(color.FgYellow).Sprint(InvalidInputMessage))
	}
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

func (t *Terminal) render(p Prompt) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	switch p.Kind {
	case Confirm:
		hint := "[y/n]"
		switch p.Default {
		case "y":
			hint = "[Y/n]"
		case "n":
			hint = "[y/N]"
		}
		fmt.Fprintf(t.out, "\n%s %s: ", bold(p.Message), hint)
	case Menu:
		fmt.Fprintf(t.out, "\n%s\n", bold(p.Message))
		for i, opt := range p.Options {
			fmt.Fprintf(t.out, "    %d. %s\n", i+1, opt)
		}
		if p.Default != "" {
			fmt.Fprintf(t.out, ": %s ", dim("["+p.Default+"]"))
		} else {
			fmt.Fprint(t.out, ": ")
		}
	default:
		if p.Default != "" {
			fmt.Fprintf(t.out, "\n%s [%s]: ", bold(p.Message), p.Default)
		} else {
			fmt.Fprintf(t.out, "\n%s: ", bold(p.Message))
		}
	}
}

// Parse interprets input as an answer to p.
func Parse(p Prompt, input string) (Answer, error) {
	switch p.Kind {
	case Confirm:
		switch strings.ToLower(input) {
		case "y", "yes":
			return Answer{Confirmed: true}, nil
		case "n", "no":
			return Answer{Confirmed: false}, nil
		}
		return Answer{}, fmt.Errorf("expected y or n, got %q", input)

	case Menu:
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(p.Options) {
			return Answer{}, fmt.Errorf("expected a number from 1 to %d, got %q", len(p.Options), input)
		}
		return Answer{Choice: n}, nil

	case Text:
		if input == "" {
			return Answer{}, errors.New("an answer is required")
		}
		return Answer{Text: input}, nil

	default:
		return Answer{}, fmt.Errorf("unknown prompt kind %d", p.Kind)
	}
}
