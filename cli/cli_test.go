package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/safedep/termbar/cli"
	"github.com/safedep/termbar/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t          *testing.T
	tmpDir     string
	configPath string
	stdin      string
	in         io.Reader
	out        io.Writer
	ctx        context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, "")
}

func newTestEnvWithConfig(t *testing.T, configYAML string) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if configYAML == "" {
		configYAML = `terminal:
  default_width: 40
run:
  interval: 0s
`
	}

	err := os.WriteFile(configPath, []byte(configYAML), 0o600)
	require.NoError(t, err)

	return &testEnv{
		t:          t,
		tmpDir:     tmpDir,
		configPath: configPath,
		ctx:        context.Background(),
	}
}

func (env *testEnv) run(args ...string) (stdout, stderr string, err error) {
	env.t.Helper()

	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	if env.out != nil {
		rootCmd.SetOut(env.out)
	}
	rootCmd.SetErr(&errBuf)
	rootCmd.SetIn(strings.NewReader(env.stdin))
	if env.in != nil {
		rootCmd.SetIn(env.in)
	}

	fullArgs := append([]string{"--config", env.configPath}, args...)
	rootCmd.SetArgs(fullArgs)
	err = rootCmd.ExecuteContext(env.ctx)
	return outBuf.String(), errBuf.String(), err
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("stdout closed")
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestRun_DryRun(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, err := env.run("run", "--dry-run", "--total", "10", "--step", "5", "--no-estimate")
	require.NoError(t, err)

	// 40 columns - 3 - len("|000.00%") leaves 29 cells.
	assert.Equal(t, []string{
		"[>" + strings.Repeat(".", 28) + "]|000.00%",
		"[" + strings.Repeat("#", 14) + ">" + strings.Repeat(".", 14) + "]|050.00%",
		"[" + strings.Repeat("#", 29) + "]|100.00%",
	}, lines(stdout))
	assert.Contains(t, stderr, "done: 10/10")
}

func TestRun_StepOvershootsTotal(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("run", "--dry-run", "--total", "5", "--step", "2", "--no-percents", "--no-estimate")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 4)
	assert.Equal(t, "["+strings.Repeat("#", 37)+"]", out[3])
}

func TestRun_RedrawsInPlace(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("run", "--total", "3", "--step", "1")
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(stdout, "\r"))
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.True(t, strings.HasSuffix(stdout, "|100.00%|ETA: 00:00:00\n"))
}

func TestRun_PrefixSuffixAndBarSize(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("run", "--dry-run", "--total", "2", "--step", "1",
		"--prefix", "build", "--suffix", "app", "--bar-size", "10", "--no-percents", "--no-estimate")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"build [>.........]|app",
		"build [#####>....]|app",
		"build [##########]|app",
	}, lines(stdout))
}

func TestRun_MalformedBarSizeIsIgnored(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("run", "--dry-run", "--total", "1", "--bar-size", "wide", "--no-percents", "--no-estimate")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 2)
	assert.Equal(t, "[>"+strings.Repeat(".", 36)+"]", out[0])
}

func TestRun_MalformedTotalFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, err := env.run("run", "--dry-run", "--total", "lots", "--step", "50", "--no-estimate")
	require.NoError(t, err)

	assert.Len(t, lines(stdout), 3)
	assert.Contains(t, stderr, "done: 100/100")
}

func TestRun_MalformedTotalKeepsConfiguredTotal(t *testing.T) {
	env := newTestEnvWithConfig(t, `terminal:
  default_width: 40
run:
  interval: 0s
  total: 10
`)

	stdout, stderr, err := env.run("run", "--dry-run", "--total", "abc", "--step", "5", "--no-estimate")
	require.NoError(t, err)

	assert.Len(t, lines(stdout), 3)
	assert.Contains(t, stderr, "done: 10/10")
}

func TestRun_DryRunWriteError(t *testing.T) {
	env := newTestEnv(t)
	env.out = failWriter{}

	_, stderr, err := env.run("run", "--dry-run", "--total", "2")
	require.Error(t, err)
	assert.Equal(t, cli.ExitOutput, cli.ExitCode(err))
	assert.NotContains(t, stderr, "done:")
}

func TestRun_InvalidStep(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("run", "--step", "0")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInput, cli.ExitCode(err))
}

func TestRun_ConfigDefaults(t *testing.T) {
	env := newTestEnvWithConfig(t, `bar:
  done_marker: "="
  current_marker: ""
  show_estimate: false
terminal:
  default_width: 20
run:
  total: 4
  step: 2
  interval: 0s
`)

	stdout, _, err := env.run("run", "--dry-run")
	require.NoError(t, err)

	// 20 - 3 - 8 leaves 9 cells, one of them reserved for the empty
	// current marker until the bar is full.
	assert.Equal(t, []string{
		"[........]|000.00%",
		"[====....]|050.00%",
		"[=========]|100.00%",
	}, lines(stdout))
}

func TestRun_InvalidConfig(t *testing.T) {
	env := newTestEnvWithConfig(t, "terminal:\n  default_width: 0\n")

	_, _, err := env.run("run", "--dry-run")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err))
}

func TestRun_Cancelled(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env.ctx = ctx

	stdout, _, err := env.run("run", "--total", "10", "--interval", "1h")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, cli.ExitGeneral, cli.ExitCode(err))
	assert.True(t, strings.HasSuffix(stdout, "\n"), "an interrupted bar ends on its own line")
}

func TestRun_Verbose(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run("--verbose", "run", "--dry-run", "--total", "1", "--prefix", "pre")
	require.NoError(t, err)

	assert.Contains(t, stderr, "run: ")
	assert.Contains(t, stderr, "prefix: pre")
	assert.Contains(t, stderr, "terminal width: 40")
}

func TestCount_AdvancesPerLine(t *testing.T) {
	env := newTestEnv(t)
	env.stdin = "a\nb\nc\nd\n"

	stdout, stderr, err := env.run("count", "--dry-run", "--total", "4", "--no-estimate")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 5)
	assert.Equal(t, "[>"+strings.Repeat(".", 28)+"]|000.00%", out[0])
	assert.Equal(t, "["+strings.Repeat("#", 7)+">"+strings.Repeat(".", 21)+"]|025.00%", out[1])
	assert.Equal(t, "["+strings.Repeat("#", 29)+"]|100.00%", out[4])
	assert.Contains(t, stderr, "done: 4/4")
}

func TestCount_EmptyInput(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("count", "--total", "10")
	require.NoError(t, err)

	assert.Contains(t, stdout, "|ETA: --:--:--")
	assert.True(t, strings.HasSuffix(stdout, "\n"))
}

func TestCount_MoreLinesThanTotal(t *testing.T) {
	env := newTestEnv(t)
	env.stdin = "1\n2\n3\n"

	stdout, _, err := env.run("count", "--dry-run", "--total", "2", "--no-estimate")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 4)
	assert.Equal(t, "["+strings.Repeat("#", 29)+"]|150.00%", out[3])
}

func TestCount_LongLines(t *testing.T) {
	long := strings.Repeat("x", 70*1024)

	tests := []struct {
		name  string
		stdin string
		total string
		done  string
	}{
		{"long line between short lines", "short\n" + long + "\nshort\n", "3", "done: 3/3"},
		{"unterminated long last line", "short\n" + long, "2", "done: 2/2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.stdin = tc.stdin

			_, stderr, err := env.run("count", "--dry-run", "--total", tc.total, "--no-estimate")
			require.NoError(t, err)
			assert.Contains(t, stderr, tc.done)
		})
	}
}

func TestCount_CancelWhileInputIsOpen(t *testing.T) {
	env := newTestEnv(t)

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	env.in = pr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.ctx = ctx

	go func() {
		_, _ = pw.Write([]byte("first\n"))
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		_, _, err := env.run("count", "--total", "10")
		errCh <- err
	}()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("count did not return after cancellation while stdin was open")
	}
}

func TestConfig_SetGetReset(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("config", "set", "bar.done_marker", "=")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Set bar.done_marker = =")

	stdout, _, err = env.run("config", "get", "bar.done_marker")
	require.NoError(t, err)
	assert.Equal(t, "=\n", stdout)

	cfg, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, "=", cfg.Bar.DoneMarker)
	assert.Equal(t, 40, cfg.Terminal.DefaultWidth)

	stdout, _, err = env.run("config", "reset")
	require.NoError(t, err)
	assert.Contains(t, stdout, "reset to defaults")

	stdout, _, err = env.run("config", "get", "bar.done_marker")
	require.NoError(t, err)
	assert.Equal(t, "#\n", stdout)
}

func TestConfig_SetInvalid(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("config", "set", "terminal.default_width", "-3")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err))

	_, _, err = env.run("config", "set", "no.such.key", "1")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfig, cli.ExitCode(err))
}

func TestConfig_GetUnknownKey(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("config", "get", "no.such.key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not found")
}

func TestConfig_Show(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("config", "show")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# "+env.configPath)
	assert.Contains(t, stdout, "bar:")
	assert.Contains(t, stdout, "default_width: 40")
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "termbar dev")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitSuccess, cli.ExitCode(nil))
	assert.Equal(t, cli.ExitGeneral, cli.ExitCode(assert.AnError))
	assert.Equal(t, cli.ExitOutput, cli.ExitCode(cli.ErrOutput("draw", assert.AnError)))
}
