package analyze

// Exports for testing.

// NewTestGeminiClient creates a GeminiClient around a mock chat client.
func NewTestGeminiClient(client chatCompleter, s GeminiSettings) *GeminiClient {
	return newGeminiClient(client, s)
}

// Function exports for unit testing internal logic.
var (
	ReasoningEffort     = reasoningEffort
	ClassifyError       = classifyError
	CanonicalDifficulty = canonicalDifficulty
)
