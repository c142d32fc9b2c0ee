package tokenutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swarm/internal/agent/ports"
)

func TestEstimateFast(t *testing.T) {
	assert.Equal(t, 0, EstimateFast(""))
	assert.Equal(t, 0, EstimateFast("   "))
	assert.Equal(t, 1, EstimateFast("a"))

	// Word count dominates for short words.
	assert.GreaterOrEqual(t, EstimateFast("one two three four"), 4)
}

func TestCountTokensNonZero(t *testing.T) {
	n := CountTokens("merge the feature branch into main")
	assert.Greater(t, n, 0)
}

func TestCountExchange(t *testing.T) {
	req := ports.CompletionRequest{Messages: []ports.Message{
		{Role: "system", Content: "you are a worker"},
		{Role: "user", Content: "fix the build"},
	}}
	resp := &ports.CompletionResponse{Content: "done"}

	withResp := CountExchange(req, resp)
	withoutResp := CountExchange(req, nil)

	assert.Greater(t, withResp, withoutResp)
	assert.Greater(t, withoutResp, 0)
}
