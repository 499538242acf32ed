// © 2025 Felipe Galindo. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sizeinject

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	cases := map[string]struct {
		bytes int64
		want  string
	}{
		"empty file":     {0, "0.0KB"},
		"exactly one KB": {1024, "1.0KB"},
		"rounds up":      {6400, "6.3KB"},
		"rounds down":    {6240, "6.1KB"},
		"sub-kilobyte":   {100, "0.1KB"},
		"typical page":   {6350, "6.2KB"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Label(tc.bytes))
		})
	}
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestInject(t *testing.T) {
	const page = "<html><body>page weight: __SIZE__</body></html>"
	path := writeFile(t, page)

	res, err := Inject(path, Token)
	require.NoError(t, err)

	assert.True(t, res.Injected)
	assert.Equal(t, int64(len(page)), res.Size)
	assert.Equal(t, Label(int64(len(page))), res.Label)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(page, Token, res.Label, 1), string(got))
	assert.NotContains(t, string(got), Token)
}

func TestInjectFirstOccurrenceOnly(t *testing.T) {
	path := writeFile(t, "__SIZE__ and __SIZE__ and __SIZE__")

	res, err := Inject(path, Token)
	require.NoError(t, err)
	assert.True(t, res.Injected)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	// Only the first token is consumed, the rest stay put.
	assert.Equal(t, 2, strings.Count(string(got), Token))
	assert.True(t, strings.HasPrefix(string(got), res.Label))
}

func TestInjectMissingToken(t *testing.T) {
	const page = "<html><body>page weight: 6.2KB</body></html>"
	path := writeFile(t, page)

	res, err := Inject(path, Token)
	require.NoError(t, err)

	// The size is still reported even though nothing changed.
	assert.False(t, res.Injected)
	assert.Equal(t, Label(int64(len(page))), res.Label)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, page, string(got))
}

func TestInjectConverges(t *testing.T) {
	path := writeFile(t, "<p>__SIZE__</p>")

	first, err := Inject(path, Token)
	require.NoError(t, err)
	assert.True(t, first.Injected)

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	// Once the token is consumed, repeated runs are content no-ops.
	second, err := Inject(path, Token)
	require.NoError(t, err)
	assert.False(t, second.Injected)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(after), string(got))
}

func TestInjectMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.html")

	_, err := Inject(path, Token)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))

	// The failed run must not conjure up an output file.
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
