// Package tokenutil provides token counting backed by tiktoken-go. It lazily
// initializes the cl100k_base encoding on first use and falls back to a
// character-based heuristic if initialization fails, so accounting never
// blocks a worker on a missing encoding asset.
package tokenutil

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"swarm/internal/agent/ports"
)

var (
	once     sync.Once
	encoding *tiktoken.Tiktoken
)

func initEncoding() {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
}

// CountTokens returns a token count using cl100k_base encoding, or the
// heuristic estimate when tiktoken is unavailable.
func CountTokens(text string) int {
	initEncoding()
	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns a heuristic token estimate: max(runes/4, word_count).
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// CountExchange estimates the tokens consumed by one completion round trip,
// used when the provider omits usage in its response.
func CountExchange(req ports.CompletionRequest, resp *ports.CompletionResponse) int {
	total := 0
	for _, msg := range req.Messages {
		total += CountTokens(msg.Content)
	}
	if resp != nil {
		total += CountTokens(resp.Content)
	}
	return total
}
