package testutil

// DefaultSessionToken is used when a scenario does not name its session.
const DefaultSessionToken = "test-session-default"

// FixedSessionGenerator returns the same session token every time, so a
// scenario recorded twice produces byte-identical traces.
//
// It satisfies engine.SessionTokenGenerator and is safe for concurrent use.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token. An empty token
// means DefaultSessionToken.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSessionToken
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
