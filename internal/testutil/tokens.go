package testutil

import "fmt"

// SequentialTokens generates request tokens "<prefix>-1", "<prefix>-2", ...
// so that event logs and golden files stay byte-identical between runs.
//
// Implements datasource.TokenGenerator.
type SequentialTokens struct {
	prefix string
	clock  *DeterministicClock
}

// NewSequentialTokens returns a generator. An empty prefix means "req".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialTokens{prefix: prefix, clock: NewDeterministicClock()}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.clock.Next())
}

// Reset restarts the sequence at 1.
func (g *SequentialTokens) Reset() { g.clock.Reset() }

// FixedTokens returns the same token for every request. Useful when a
// scenario only cares that a token is present.
//
// Thread-safety: FixedTokens is stateless and safe for concurrent use.
type FixedTokens struct {
	token string
}

// NewFixedTokens returns a fixed generator. An empty token means
// "test-request".
func NewFixedTokens(token string) *FixedTokens {
	if token == "" {
		token = "test-request"
	}
	return &FixedTokens{token: token}
}

// Generate returns the fixed token.
func (g *FixedTokens) Generate() string { return g.token }
