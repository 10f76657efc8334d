package transcribe_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-aula/internal/apierr"
	"github.com/alnah/go-aula/internal/transcribe"
)

// Notes:
// - Black-box testing via package transcribe_test.
// - Unit tests inject a mock audioTranscriber through export_test.go.
// - End-to-end tests run the real go-openai client against httptest.Server
//   so the multipart fields sent to the service are checked too.
//
// Coverage gaps (intentional):
// - Retry behaviour lives in apierr and pipeline; the transcriber makes one call.

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// mockAudioTranscriber implements audioTranscriber for testing.
type mockAudioTranscriber struct {
	mu       sync.Mutex
	calls    []openai.AudioRequest
	response openai.AudioResponse
	err      error
}

func (m *mockAudioTranscriber) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return openai.AudioResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockAudioTranscriber) LastRequest() openai.AudioRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return openai.AudioRequest{}
	}
	return m.calls[len(m.calls)-1]
}

const verboseJSON = `{
  "task": "transcribe",
  "language": "portuguese",
  "duration": 599.98,
  "text": " Olá pessoal, hoje vamos usar docker.",
  "segments": [
    {"id": 0, "seek": 0, "start": 0.0, "end": 3.5, "text": " Olá pessoal,", "tokens": [50365, 3200],
     "temperature": 0.0, "avg_logprob": -0.21, "compression_ratio": 1.3, "no_speech_prob": 0.01},
    {"id": 1, "seek": 0, "start": 3.5, "end": 6.0, "text": " hoje vamos usar docker.", "tokens": [50540],
     "temperature": 0.0, "avg_logprob": -0.3, "compression_ratio": 1.1, "no_speech_prob": 0.02}
  ],
  "words": [
    {"word": "Olá", "start": 0.1, "end": 0.4},
    {"word": "pessoal,", "start": 0.5, "end": 1.0},
    {"word": "hoje", "start": 3.6, "end": 3.9},
    {"word": "vamos", "start": 4.0, "end": 4.3},
    {"word": "usar", "start": 4.4, "end": 4.7},
    {"word": "docker.", "start": 4.8, "end": 5.5}
  ]
}`

func verboseResponse(t *testing.T) openai.AudioResponse {
	t.Helper()
	var resp openai.AudioResponse
	if err := json.Unmarshal([]byte(verboseJSON), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return resp
}

func createTempAudioFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "aula_chunk_1.flac")
	if err := os.WriteFile(p, []byte("fLaC fake audio"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestTranscribe - request shape and conversion
// ---------------------------------------------------------------------------

func TestTranscribe_Success(t *testing.T) {
	t.Parallel()

	mock := &mockAudioTranscriber{response: verboseResponse(t)}
	tr := transcribe.NewTestTranscriber(mock, transcribe.Settings{
		Model:    "whisper-large-v3",
		Language: "pt-BR",
	})

	got, err := tr.Transcribe(context.Background(), "temp/aula_chunk_1.flac")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	req := mock.LastRequest()
	if req.Model != "whisper-large-v3" {
		t.Errorf("Model = %q", req.Model)
	}
	if req.Language != "pt" {
		t.Errorf("Language = %q, want base code pt", req.Language)
	}
	if req.Format != openai.AudioResponseFormatVerboseJSON {
		t.Errorf("Format = %q, want verbose_json", req.Format)
	}
	wantGran := []openai.TranscriptionTimestampGranularity{
		openai.TranscriptionTimestampGranularityWord,
		openai.TranscriptionTimestampGranularitySegment,
	}
	if !slices.Equal(req.TimestampGranularities, wantGran) {
		t.Errorf("TimestampGranularities = %v, want %v", req.TimestampGranularities, wantGran)
	}
	if req.FilePath != "temp/aula_chunk_1.flac" {
		t.Errorf("FilePath = %q", req.FilePath)
	}

	if got.Duration != 599.98 {
		t.Errorf("Duration = %v", got.Duration)
	}
	if len(got.Segments) != 2 || len(got.Words) != 6 {
		t.Fatalf("got %d segments, %d words; want 2, 6", len(got.Segments), len(got.Words))
	}
	if s := got.Segments[0]; s.AvgLogprob != -0.21 || s.NoSpeechProb != 0.01 || len(s.Tokens) != 2 {
		t.Errorf("Segments[0] = %+v, scores not copied", s)
	}
	if w := got.Words[5]; w.Word != "docker." || w.Start != 4.8 || w.End != 5.5 {
		t.Errorf("Words[5] = %+v", w)
	}
}

func TestTranscribe_Defaults(t *testing.T) {
	t.Parallel()

	mock := &mockAudioTranscriber{}
	tr := transcribe.NewTestTranscriber(mock, transcribe.Settings{})
	if tr.Model() != transcribe.DefaultModel {
		t.Errorf("Model() = %q, want %q", tr.Model(), transcribe.DefaultModel)
	}

	got, err := tr.Transcribe(context.Background(), "a.flac")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if mock.LastRequest().Language != "" {
		t.Errorf("Language = %q, want empty for auto-detect", mock.LastRequest().Language)
	}
	if got.Segments == nil || got.Words == nil {
		t.Error("empty response must produce non-nil slices")
	}
}

func TestTranscribe_ErrorIsClassified(t *testing.T) {
	t.Parallel()

	mock := &mockAudioTranscriber{err: &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"}}
	tr := transcribe.NewTestTranscriber(mock, transcribe.Settings{})

	_, err := tr.Transcribe(context.Background(), "a.flac")
	if !errors.Is(err, apierr.ErrRateLimit) {
		t.Errorf("Transcribe() error = %v, want ErrRateLimit", err)
	}
}

// ---------------------------------------------------------------------------
// TestClassifyError
// ---------------------------------------------------------------------------

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, apierr.ErrRateLimit},
		{"quota", &openai.APIError{HTTPStatusCode: 429, Message: "You exceeded your current quota"}, apierr.ErrQuotaExceeded},
		{"billing", &openai.APIError{HTTPStatusCode: 429, Message: "billing hard limit"}, apierr.ErrQuotaExceeded},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401, Message: "Invalid API Key"}, apierr.ErrAuthFailed},
		{"request timeout", &openai.APIError{HTTPStatusCode: 408}, apierr.ErrTimeout},
		{"gateway timeout", &openai.APIError{HTTPStatusCode: 504}, apierr.ErrTimeout},
		{"bad request", &openai.APIError{HTTPStatusCode: 400, Message: "file too large"}, apierr.ErrBadRequest},
		{"payload too large", &openai.APIError{HTTPStatusCode: 413}, apierr.ErrBadRequest},
		{"server error", &openai.APIError{HTTPStatusCode: 500}, apierr.ErrServer},
		{"unavailable", &openai.APIError{HTTPStatusCode: 503}, apierr.ErrServer},
		{"request error 502", &openai.RequestError{HTTPStatusCode: 502, Body: []byte("<html>bad gateway</html>")}, apierr.ErrServer},
		{"wrapped api error", fmt.Errorf("call: %w", &openai.APIError{HTTPStatusCode: 401}), apierr.ErrAuthFailed},
		{"deadline", context.DeadlineExceeded, apierr.ErrTimeout},
		{"net timeout", fmt.Errorf("post: %w", timeoutErr{}), apierr.ErrTimeout},
		{"canceled passes through", context.Canceled, context.Canceled},
		{"unknown passes through", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := transcribe.ClassifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGroqTranscriber_HTTP - real client against a fake endpoint
// ---------------------------------------------------------------------------

func TestGroqTranscriber_HTTP(t *testing.T) {
	t.Parallel()

	t.Run("sends verbose json request", func(t *testing.T) {
		t.Parallel()

		var (
			mu   sync.Mutex
			form map[string][]string
			auth string
			path string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			mu.Lock()
			form = r.MultipartForm.Value
			auth = r.Header.Get("Authorization")
			path = r.URL.Path
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(verboseJSON))
		}))
		t.Cleanup(srv.Close)

		tr := transcribe.NewGroqTranscriber(transcribe.Settings{
			APIKey:   "gsk_test",
			BaseURL:  srv.URL + "/",
			Model:    "whisper-large-v3-turbo",
			Language: "pt",
			Timeout:  5 * time.Second,
		})

		got, err := tr.Transcribe(context.Background(), createTempAudioFile(t))
		if err != nil {
			t.Fatalf("Transcribe() error = %v", err)
		}
		if len(got.Words) != 6 {
			t.Errorf("len(Words) = %d, want 6", len(got.Words))
		}

		mu.Lock()
		defer mu.Unlock()
		if path != "/audio/transcriptions" {
			t.Errorf("path = %q", path)
		}
		if auth != "Bearer gsk_test" {
			t.Errorf("Authorization = %q", auth)
		}
		if v := form["response_format"]; len(v) != 1 || v[0] != "verbose_json" {
			t.Errorf("response_format = %v", v)
		}
		if v := form["language"]; len(v) != 1 || v[0] != "pt" {
			t.Errorf("language = %v", v)
		}
		if v := form["timestamp_granularities[]"]; !slices.Equal(v, []string{"word", "segment"}) {
			t.Errorf("timestamp_granularities[] = %v", v)
		}
	})

	t.Run("error bodies are classified", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"json rate limit", 429, `{"error":{"message":"Rate limit reached for model","type":"tokens"}}`, apierr.ErrRateLimit},
			{"json auth", 401, `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`, apierr.ErrAuthFailed},
			{"html server error", 502, `<html>Bad Gateway</html>`, apierr.ErrServer},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				}))
				t.Cleanup(srv.Close)

				tr := transcribe.NewGroqTranscriber(transcribe.Settings{APIKey: "k", BaseURL: srv.URL})
				_, err := tr.Transcribe(context.Background(), createTempAudioFile(t))
				if !errors.Is(err, tt.want) {
					t.Errorf("Transcribe() error = %v, want %v", err, tt.want)
				}
			})
		}
	})
}
