package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedIdenticalContent(t *testing.T) {
	g := NewGenerator(false)
	res := g.Unified("same\n", "same\n", "a.txt")

	assert.Empty(t, res.Unified)
	assert.Zero(t, res.AddedLines)
	assert.Zero(t, res.RemovedLines)
	assert.Equal(t, "No changes", res.Summary())
}

func TestUnifiedCountsLines(t *testing.T) {
	g := NewGenerator(false)
	res := g.Unified("one\ntwo\nthree\n", "one\nTWO\nthree\nfour\n", "a.txt")

	require.NotEmpty(t, res.Unified)
	assert.True(t, strings.HasPrefix(res.Unified, "--- a/a.txt\n+++ b/a.txt\n"))
	assert.Greater(t, res.AddedLines, 0)
	assert.Contains(t, res.Summary(), "+")
}

func TestUnifiedBinary(t *testing.T) {
	g := NewGenerator(false)
	res := g.Unified("text", "bin\x00ary", "blob.bin")

	assert.True(t, res.IsBinary)
	assert.Contains(t, res.Unified, "Binary file blob.bin")
	assert.Equal(t, "Binary file changed", res.Summary())
}

func TestUnifiedNoColorByDefault(t *testing.T) {
	g := NewGenerator(false)
	res := g.Unified("a\n", "b\n", "f")
	assert.NotContains(t, res.Unified, "\x1b[")
}
