// Package transcribe sends audio chunks to a Whisper-compatible
// transcription service and returns timed words and segments.
//
// The service is reached through go-openai, pointed at Groq's
// OpenAI-compatible endpoint by default.
package transcribe
