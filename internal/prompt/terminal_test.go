package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Ask(t *testing.T) {
	color.NoColor = true

	menu := Choose("What data would you like to connect to?", []string{"Files", "SQL"}, 0)

	tests := map[string]struct {
		prompt      Prompt
		input       string
		want        Answer
		wantErr     error
		wantRetries int
	}{
		"confirm yes": {
			prompt: YesNo("Proceed?", true),
			input:  "y\n",
			want:   Answer{Confirmed: true},
		},
		"confirm default yes": {
			prompt: YesNo("Proceed?", true),
			input:  "\n",
			want:   Answer{Confirmed: true},
		},
		"confirm default no": {
			prompt: YesNo("Overwrite?", false),
			input:  "\n",
			want:   Answer{Confirmed: false},
		},
		"confirm retries": {
			prompt:      YesNo("Proceed?", true),
			input:       "maybe\nNO\n",
			want:        Answer{Confirmed: false},
			wantRetries: 1,
		},
		"menu choice": {
			prompt: menu,
			input:  "2\n",
			want:   Answer{Choice: 2},
		},
		"menu out of range then valid": {
			prompt:      menu,
			input:       "3\nzero\n1\n",
			want:        Answer{Choice: 1},
			wantRetries: 2,
		},
		"text default": {
			prompt: Input("Name the new expectation suite", "warning"),
			input:  "\n",
			want:   Answer{Text: "warning"},
		},
		"text trimmed": {
			prompt: Input("Give your new data source a short name", ""),
			input:  "  my_data  \r\n",
			want:   Answer{Text: "my_data"},
		},
		"eof uses default": {
			prompt: YesNo("Build docs?", true),
			input:  "",
			want:   Answer{Confirmed: true},
		},
		"eof on a prompt that requires an answer": {
			prompt:  Prompt{Kind: Confirm, Message: "OK to proceed?", Default: "y", RequireAnswer: true},
			input:   "",
			wantErr: ErrInputClosed,
		},
		"enter still takes the default when an answer is required": {
			prompt: Prompt{Kind: Confirm, Message: "OK to proceed?", Default: "y", RequireAnswer: true},
			input:  "\n",
			want:   Answer{Confirmed: true},
		},
		"eof without default": {
			prompt:  menu,
			input:   "",
			wantErr: ErrInputClosed,
		},
		"last line without newline": {
			prompt: Input("Path", ""),
			input:  "data/Titanic.csv",
			want:   Answer{Text: "data/Titanic.csv"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out)

			got, err := term.Ask(context.Background(), tt.prompt)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRetries, strings.Count(out.String(), InvalidInputMessage))
			assert.Contains(t, out.String(), tt.prompt.Message)
		})
	}
}

func TestTerminal_Render(t *testing.T) {
	color.NoColor = true

	tests := map[string]struct {
		prompt Prompt
		want   string
	}{
		"confirm default yes": {
			prompt: YesNo("Proceed?", true),
			want:   "Proceed? [Y/n]: ",
		},
		"confirm default no": {
			prompt: YesNo("Overwrite?", false),
			want:   "Overwrite? [y/N]: ",
		},
		"text with default": {
			prompt: Input("Name the new expectation suite", "warning"),
			want:   "Name the new expectation suite [warning]: ",
		},
		"menu": {
			prompt: Choose("Pick one", []string{"Files", "SQL"}, 0),
			want:   "Pick one\n    1. Files\n    2. SQL\n: ",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader("\n"), &out)
			_, _ = term.Ask(context.Background(), tt.prompt)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestTerminal_SequentialPrompts(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("Y\n2\nmy_db\n"), &out)
	ctx := context.Background()

	a, err := term.Ask(ctx, YesNo("Proceed?", true))
	require.NoError(t, err)
	assert.True(t, a.Confirmed)

	a, err = term.Ask(ctx, Choose("Backend?", []string{"Files", "SQL"}, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Choice)

	a, err = term.Ask(ctx, Input("Name", ""))
	require.NoError(t, err)
	assert.Equal(t, "my_db", a.Text)

	_, err = term.Ask(ctx, Input("More", ""))
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestTerminal_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	term := NewTerminal(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := term.Ask(ctx, Input("Name", ""))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScripted(t *testing.T) {
	s := NewScripted("Y", "bogus", "2", "")
	ctx := context.Background()

	a, err := s.Ask(ctx, YesNo("Proceed?", true))
	require.NoError(t, err)
	assert.True(t, a.Confirmed)

	a, err = s.Ask(ctx, Choose("Backend?", []string{"Files", "SQL"}, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Choice, "invalid inputs are skipped like a reprompt")

	a, err = s.Ask(ctx, Input("Suite", "warning"))
	require.NoError(t, err)
	assert.Equal(t, "warning", a.Text)

	a, err = s.Ask(ctx, YesNo("Docs?", true))
	require.NoError(t, err)
	assert.True(t, a.Confirmed, "exhausted script falls back to the default")

	_, err = s.Ask(ctx, Input("Path", ""))
	assert.ErrorIs(t, err, ErrInputClosed)

	assert.Equal(t, []string{"Proceed?", "Backend?", "Suite", "Docs?", "Path"}, s.Messages())
}

func TestScripted_RequireAnswer(t *testing.T) {
	p := YesNo("OK to proceed?", true)
	p.RequireAnswer = true

	_, err := NewScripted().Ask(context.Background(), p)
	assert.ErrorIs(t, err, ErrInputClosed)

	a, err := NewScripted("").Ask(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, a.Confirmed)
}
