package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expectation-labs/gxctl/internal/build"
)

func TestRootCmd_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	assert.Equal(t, "gxctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)
}

func TestRootCmd_Flags(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	initCmd, _, err := root.Find([]string{"init"})
	require.NoError(t, err)

	tests := map[string]struct {
		lookup    func(name string) bool
		flagName  string
		shorthand string
	}{
		"config flag exists": {
			lookup:   func(n string) bool { return root.PersistentFlags().Lookup(n) != nil },
			flagName: "config",
		},
		"verbose flag exists": {
			lookup:    func(n string) bool { return root.PersistentFlags().Lookup(n) != nil },
			flagName:  "verbose",
			shorthand: "v",
		},
		"directory flag exists": {
			lookup:    func(n string) bool { return initCmd.Flags().Lookup(n) != nil },
			flagName:  "directory",
			shorthand: "d",
		},
		"view flag exists": {
			lookup:   func(n string) bool { return initCmd.Flags().Lookup(n) != nil },
			flagName: "view",
		},
		"no-view flag exists": {
			lookup:   func(n string) bool { return initCmd.Flags().Lookup(n) != nil },
			flagName: "no-view",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.lookup(tt.flagName), "flag %s should exist", tt.flagName)
			if tt.shorthand != "" {
				flag := root.PersistentFlags().ShorthandLookup(tt.shorthand)
				if flag == nil {
					flag = initCmd.Flags().ShorthandLookup(tt.shorthand)
				}
				require.NotNil(t, flag)
				assert.Equal(t, tt.flagName, flag.Name)
			}
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := map[string]struct {
		args     []string
		wantCode int
		wantErr  string
	}{
		"version": {
			args:     []string{"version", "--plain"},
			wantCode: ExitSuccess,
		},
		"unknown flag": {
			args:     []string{"init", "--bogus"},
			wantCode: ExitInvalidArguments,
			wantErr:  "Argument Error",
		},
		"unexpected argument": {
			args:     []string{"init", "extra"},
			wantCode: ExitInvalidArguments,
			wantErr:  "Argument Error",
		},
		"view and no-view together": {
			args:     []string{"init", "--view", "--no-view"},
			wantCode: ExitFailure,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			cmd := NewRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)

			code := Run(context.Background(), cmd, tt.args, &errOut)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	tests := map[string]struct {
		args []string
		want string
	}{
		"plain": {
			args: []string{"version", "--plain"},
			want: build.Version + "\n",
		},
		"pretty": {
			args: []string{"version"},
			want: build.String(),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewRootCmd()
			cmd.SetOut(&out)

			require.Equal(t, ExitSuccess, Run(context.Background(), cmd, tt.args, &out))
			if name == "plain" {
				assert.Equal(t, tt.want, out.String())
			} else {
				assert.Contains(t, out.String(), tt.want)
			}
		})
	}
}
