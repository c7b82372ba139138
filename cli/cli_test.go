package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devenc042/MyZeDeDup/cli/cmd"
	"github.com/Devenc042/MyZeDeDup/log"
	"github.com/Devenc042/MyZeDeDup/pkg"
)

// TestMain points the configuration and cache directories at a scratch
// directory before their locations are first computed.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "zedup-cli-test-*")
	if err != nil {
		panic(err)
	}

	os.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	os.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	os.Setenv("HOME", dir)

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := cmd.WithStdio(t.Context(), cmd.Stdio{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &out,
	})

	exited := -1

	err := Run(ctx, func(code int) { exited = code }, args...)
	require.Equal(t, -1, exited, "unexpected exit")

	return out.String(), err
}

func TestRun_Version(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, pkg.Name+" "+pkg.Version+"\n", out)
}

func TestRun_Eval(t *testing.T) {
	out, err := run(t, "return a + b", "eval", "-p", "a", "-p", "b", "33", "29")
	require.NoError(t, err)
	assert.Equal(t, "62\n", out)
}

func TestRun_EngineFlags(t *testing.T) {
	out, err := run(t, `date("16-11-2017", "02-01-2006")`, "--date-layout=2006/01/02", "eval")
	require.NoError(t, err)
	assert.Equal(t, "2017/11/16\n", out)

	out, err = run(t, "1234567.891", "--locale=de-DE", "--precision=2", "eval")
	require.NoError(t, err)
	assert.Equal(t, "1.234.567,89\n", out)

	_, err = run(t, "1", "--locale=!!", "eval")
	assert.ErrorIs(t, err, cmd.ErrInvalidLocale)
}

func TestRun_Check(t *testing.T) {
	out, err := run(t, "var x = 1; x", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok, 2 statements")
}

func TestRun_InitThenLoad(t *testing.T) {
	path := configPath(baseConfig)
	t.Cleanup(func() { os.Remove(path) })

	_, err := run(t, "", "--max-depth=7", "--date-layout=2006", "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max-depth: 7")
	assert.Contains(t, string(data), "date-layout:")

	// The written configuration supplies defaults to later runs.
	out, err := run(t, `date("16-11-2017", "02-01-2006")`, "eval")
	require.NoError(t, err)
	assert.Equal(t, "2017\n", out)
}

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "separate values",
			args: []string{"--log-level", "debug", "--log-format", "json"},
			want: logConfig{Level: "debug", Format: "json"},
		},
		{
			name: "assigned values",
			args: []string{"eval", "--log-level=warn", "x"},
			want: logConfig{Level: "warn"},
		},
		{
			name: "booleans",
			args: []string{"--log-caller", "--no-log-pretty"},
			want: logConfig{Caller: true, Pretty: false},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-pretty=true", "--no-log-caller=false"},
			want: logConfig{Caller: true, Pretty: true},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level=debug"},
			want: logConfig{},
		},
		{
			name: "value flag without value",
			args: []string{"--log-level", "--log-caller"},
			want: logConfig{Caller: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)
			assert.Equal(t, tt.want, got)
		})
	}
}
