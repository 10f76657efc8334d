package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// NewTestTranscriber creates a GroqTranscriber around a mock client.
func NewTestTranscriber(client audioTranscriber, s Settings) *GroqTranscriber {
	return newGroqTranscriber(client, s)
}

// Function exports for unit testing internal logic.
var ClassifyError = classifyError
