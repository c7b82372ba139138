package lang

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext(t *testing.T) {
	var out testSink

	when := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)

	c := NewContext().
		Set("i", 7).
		Set("u", uint8(3)).
		Set("f", float32(0.5)).
		Set("when", &when).
		Set("out", &out).
		Set("nothing", nil)

	i, err := c.Get("i")
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	u, _ := c.Lookup("u")
	assert.Equal(t, int64(3), u)

	f, _ := c.Lookup("f")
	assert.Equal(t, 0.5, f)

	w, _ := c.Lookup("when")
	assert.Equal(t, when, w)

	assert.True(t, c.Has("nothing"), "nil is a binding")
	assert.False(t, c.Has("missing"))
	assert.Equal(t, []string{"f", "i", "nothing", "out", "u", "when"}, c.Names())

	clone := c.Clone()
	clone.Set("i", 8)
	clone.Delete("u")

	i, _ = c.Lookup("i")
	assert.Equal(t, int64(7), i, "clone does not alias bindings")
	assert.True(t, c.Has("u"))
	assert.Equal(t, 5, clone.Len())

	var zero Context

	zero.Set("x", 1)
	assert.True(t, zero.Has("x"))
}

type testSink struct{ data []byte }

func (s *testSink) WriteString(v string) (int, error) {
	s.data = append(s.data, v...)

	return len(v), nil
}
