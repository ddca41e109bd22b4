package ai

import "testing"

// blankAPIKeyEnv clears the OpenAI credential for the duration of a test
// so a misrouted request fails authentication instead of reaching the
// real endpoint with the developer's key. Every test in this package
// talks to an httptest server or a MockExecutor, never to a live API.
func blankAPIKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
}
