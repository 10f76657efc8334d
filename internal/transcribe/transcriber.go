package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-aula/internal/apierr"
	"github.com/alnah/go-aula/internal/lang"
	"github.com/alnah/go-aula/internal/transcript"
)

// Groq endpoint and model defaults.
const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is the Whisper variant used when none is configured.
	DefaultModel = "whisper-large-v3-turbo"
)

// Transcriber transcribes one audio chunk.
type Transcriber interface {
	// Transcribe sends audioPath to the service and returns its timed result.
	// Timestamps are relative to the start of the file.
	Transcribe(ctx context.Context, audioPath string) (transcript.ChunkResult, error)
}

// audioTranscriber is the subset of *openai.Client used here.
// Tests inject a mock through export_test.go.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*GroqTranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// Settings selects the endpoint and model.
type Settings struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string        // ISO 639-1 code; empty lets the service detect it.
	Timeout  time.Duration // Per request; zero means no client-side limit.
}

// GroqTranscriber calls an OpenAI-compatible transcription endpoint and
// asks for verbose JSON with word and segment timestamps.
//
// It makes exactly one request per call. Retrying is the caller's job so
// that every attempt can be observed.
type GroqTranscriber struct {
	client   audioTranscriber
	model    string
	language string
}

// NewGroqTranscriber builds a transcriber backed by a go-openai client
// pointed at s.BaseURL.
func NewGroqTranscriber(s Settings) *GroqTranscriber {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg := openai.DefaultConfig(s.APIKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: s.Timeout}

	return newGroqTranscriber(openai.NewClientWithConfig(cfg), s)
}

func newGroqTranscriber(client audioTranscriber, s Settings) *GroqTranscriber {
	model := s.Model
	if model == "" {
		model = DefaultModel
	}
	return &GroqTranscriber{
		client:   client,
		model:    model,
		language: lang.BaseCode(s.Language),
	}
}

// Model returns the model name sent with every request.
func (t *GroqTranscriber) Model() string { return t.model }

// Transcribe uploads audioPath and converts the verbose response.
// Errors are classified into apierr sentinels.
func (t *GroqTranscriber) Transcribe(ctx context.Context, audioPath string) (transcript.ChunkResult, error) {
	req := openai.AudioRequest{
		Model:       t.model,
		FilePath:    audioPath,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Language:    t.language,
		Temperature: 0,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return transcript.ChunkResult{}, classifyError(err)
	}
	return toChunkResult(resp), nil
}

// toChunkResult copies the provider response into the domain model.
// Slices are always non-nil.
func toChunkResult(resp openai.AudioResponse) transcript.ChunkResult {
	out := transcript.ChunkResult{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
		Segments: make([]transcript.Segment, 0, len(resp.Segments)),
		Words:    make([]transcript.Word, 0, len(resp.Words)),
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, transcript.Segment{
			ID:               s.ID,
			Seek:             s.Seek,
			Start:            s.Start,
			End:              s.End,
			Text:             s.Text,
			Tokens:           s.Tokens,
			Temperature:      s.Temperature,
			AvgLogprob:       s.AvgLogprob,
			CompressionRatio: s.CompressionRatio,
			NoSpeechProb:     s.NoSpeechProb,
		})
	}
	for _, w := range resp.Words {
		out.Words = append(out.Words, transcript.Word{Word: w.Word, Start: w.Start, End: w.End})
	}
	return out
}

// classifyError maps go-openai errors to apierr sentinels.
// Unknown errors are returned unchanged.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, strings.TrimSpace(string(reqErr.Body)), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w", netErr.Error(), apierr.ErrTimeout)
	}
	return err
}

func classifyStatus(status int, msg string, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		// Quota exhaustion needs user action; a plain rate limit passes.
		if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
			return fmt.Errorf("%s: %w", msg, apierr.ErrQuotaExceeded)
		}
		return fmt.Errorf("%s: %w", msg, apierr.ErrRateLimit)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case status >= 500:
		return fmt.Errorf("HTTP %d: %s: %w", status, msg, apierr.ErrServer)
	case status >= 400:
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	}
	return err
}
