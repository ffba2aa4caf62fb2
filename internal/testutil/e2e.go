// Package testutil provides fixtures and an end-to-end harness for gxctl tests.
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
)

var (
	// gxctlBinaryPath caches the built gxctl binary path.
	gxctlBinaryPath string
	gxctlBuildOnce  sync.Once
	gxctlBuildErr   error
)

// E2EEnv runs the real gxctl binary against a throwaway home and project
// directory. HOME points into the temp tree so no user settings leak in.
type E2EEnv struct {
	t          *testing.T
	tempDir    string
	binDir     string
	projectDir string
}

// CommandResult captures the result of running a gxctl command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv builds gxctl (once per test binary) and prepares an empty
// project directory.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	tempDir := t.TempDir()
	env := &E2EEnv{
		t:          t,
		tempDir:    tempDir,
		binDir:     filepath.Join(tempDir, "bin"),
		projectDir: filepath.Join(tempDir, "project"),
	}
	for _, dir := range []string{env.binDir, env.projectDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}

	gxctlBuildOnce.Do(func() {
		gxctlBinaryPath, gxctlBuildErr = buildGxctl()
	})
	if gxctlBuildErr != nil {
		t.Fatalf("building gxctl: %v", gxctlBuildErr)
	}
	return env
}

func buildGxctl() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	tmpDir, err := os.MkdirTemp("", "gxctl-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}
	binaryPath := filepath.Join(tmpDir, "gxctl")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gxctl")
	cmd.Dir = repoRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("go build: %w\nOutput: %s", err, output)
	}
	return binaryPath, nil
}

// Run executes gxctl with args, feeding stdin to the process.
func (e *E2EEnv) Run(stdin string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()
	cmd := exec.Command(gxctlBinaryPath, args...)
	cmd.Dir = e.projectDir
	cmd.Env = e.isolatedEnv()
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}
	return result
}

func (e *E2EEnv) isolatedEnv() []string {
	env := []string{
		"HOME=" + e.tempDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.tempDir, ".config"),
		"PATH=" + os.Getenv("PATH"),
		"NO_COLOR=1",
	}
	for _, key := range []string{"LANG", "LC_ALL", "TMPDIR"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// ProjectDir returns the directory gxctl runs in.
func (e *E2EEnv) ProjectDir() string {
	return e.projectDir
}

// TempDir returns the root temp directory for this environment.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// WriteUserConfig writes the gxctl settings file under the isolated home.
func (e *E2EEnv) WriteUserConfig(content string) string {
	e.t.Helper()
	dir := filepath.Join(e.tempDir, ".config", "gxctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("creating config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing config: %v", err)
	}
	return path
}

// InitGitRepo turns the project directory into a git worktree.
func (e *E2EEnv) InitGitRepo() {
	e.t.Helper()
	if _, err := git.PlainInit(e.projectDir, false); err != nil {
		e.t.Fatalf("git init: %v", err)
	}
}
