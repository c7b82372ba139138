package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devenc042/MyZeDeDup/pkg"
)

type resolverCLI struct {
	LogLevel  string   `default:"info"`
	MaxDepth  int      `default:"200"`
	Precision int      `default:"-1"`
	Ratio     float64  `default:"1"`
	Pretty    bool     `default:"true" negatable:""`
	Tags      []string
}

func parseWithConfig(t *testing.T, content string, args ...string) (resolverCLI, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), baseConfig)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var cli resolverCLI

	parser, err := kong.New(&cli, kong.Configuration(resolve, path))
	if err != nil {
		return cli, err
	}

	_, err = parser.Parse(args)

	return cli, err
}

func TestResolve(t *testing.T) {
	cli, err := parseWithConfig(t, strings.Join([]string{
		"log-level: debug",
		"max_depth: 50",
		"precision: 2",
		"ratio: 0.5",
		"pretty: false",
		"tags: [a, b]",
	}, "\n"))
	require.NoError(t, err)

	assert.Equal(t, resolverCLI{
		LogLevel:  "debug",
		MaxDepth:  50,
		Precision: 2,
		Ratio:     0.5,
		Pretty:    false,
		Tags:      []string{"a", "b"},
	}, cli)
}

func TestResolve_FlagsOverride(t *testing.T) {
	cli, err := parseWithConfig(t, "log-level: debug\nmax-depth: 50\n",
		"--max-depth=10")
	require.NoError(t, err)

	assert.Equal(t, "debug", cli.LogLevel)
	assert.Equal(t, 10, cli.MaxDepth)
}

func TestResolve_Empty(t *testing.T) {
	cli, err := parseWithConfig(t, "")
	require.NoError(t, err)

	assert.Equal(t, "info", cli.LogLevel)
	assert.Equal(t, 200, cli.MaxDepth)
	assert.True(t, cli.Pretty)
}

func TestResolve_Malformed(t *testing.T) {
	_, err := resolve(strings.NewReader("log-level: [debug"))
	assert.ErrorIs(t, err, pkg.ErrYAMLUnmarshal)
}
