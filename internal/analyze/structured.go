package analyze

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-aula/internal/diag"
	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/transcript"
)

// Source tells which path produced an Analysis.
type Source string

// Analysis sources.
const (
	SourceModel     Source = "model"
	SourceHeuristic Source = "heuristic"
)

// Analysis is a Result plus how it was obtained.
type Analysis struct {
	Result    Result
	Source    Source
	Truncated bool
	Usage     Completion // Token counts; zero for the heuristic.
	Fallback  error      // Why the model path was abandoned, if it was.
}

// StructuredAnalyzer prefers the remote model and falls back to Heuristic.
type StructuredAnalyzer struct {
	client    Completer // Nil disables the model path.
	budgeter  Budgeter
	heuristic Heuristic
	logger    *slog.Logger
	dumper    *diag.Dumper
	progress  io.Writer
}

// StructuredOption configures a StructuredAnalyzer.
type StructuredOption func(*StructuredAnalyzer)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) StructuredOption {
	return func(a *StructuredAnalyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDumper saves the prompt and raw reply as debug files.
func WithDumper(d *diag.Dumper) StructuredOption {
	return func(a *StructuredAnalyzer) { a.dumper = d }
}

// WithProgress sets where user-facing progress lines go.
func WithProgress(w io.Writer) StructuredOption {
	return func(a *StructuredAnalyzer) {
		if w != nil {
			a.progress = w
		}
	}
}

// NewStructuredAnalyzer builds an analyzer. client may be nil when no
// model is configured; every call then uses the heuristic.
func NewStructuredAnalyzer(client Completer, budgeter Budgeter, opts ...StructuredOption) *StructuredAnalyzer {
	a := &StructuredAnalyzer{
		client:   client,
		budgeter: budgeter,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "analyze")
	return a
}

// Analyze never fails: any problem on the model path yields the
// heuristic analysis, with the reason kept in Analysis.Fallback.
func (a *StructuredAnalyzer) Analyze(ctx context.Context, tr transcript.Transcript) Analysis {
	if a.client == nil {
		a.logger.Warn("analysis model not configured, using heuristic")
		fmt.Fprintln(a.progress, "Analysis model not configured. Using basic analysis.")
		return a.fallback(tr, ErrNoModel)
	}

	text, truncated := a.budgeter.Budget(tr.Text)
	estimate := a.budgeter.Estimate(tr.Text)
	if truncated {
		a.logger.Info("transcript truncated for analysis", "estimated_tokens", estimate, "budget", a.budgeter.Max)
		fmt.Fprintf(a.progress, "Text truncated: %s -> %s tokens\n",
			format.Thousands(estimate), format.Thousands(a.budgeter.Max))
	} else {
		fmt.Fprintf(a.progress, "Processing %s tokens of context\n", format.Thousands(estimate))
	}

	prompt := BuildPrompt(tr, text)
	a.dumper.Text("analysis_prompt.txt", prompt)

	completion, err := a.client.Complete(ctx, SystemInstruction, prompt)
	if err != nil {
		return a.fail(tr, truncated, fmt.Errorf("analysis request: %w", err))
	}
	a.dumper.Text("analysis_response.json", completion.Content)

	payload, err := ParsePayload(completion.Content)
	if err != nil {
		return a.fail(tr, truncated, err)
	}

	a.logger.Info("analysis completed", "payload", payload.Kind.String(),
		"prompt_tokens", completion.PromptTokens, "completion_tokens", completion.CompletionTokens,
		"reasoning_tokens", completion.ReasoningTokens, "total_tokens", completion.TotalTokens)
	fmt.Fprintf(a.progress, "Tokens used: input %s, output %s, total %s\n",
		format.Thousands(completion.PromptTokens), format.Thousands(completion.CompletionTokens),
		format.Thousands(completion.TotalTokens))

	return Analysis{
		Result:    Normalize(payload, tr),
		Source:    SourceModel,
		Truncated: truncated,
		Usage:     completion,
	}
}

func (a *StructuredAnalyzer) fail(tr transcript.Transcript, truncated bool, err error) Analysis {
	a.logger.Warn("analysis failed, using heuristic", "error", err)
	fmt.Fprintf(a.progress, "Analysis error: %v\nFalling back to basic analysis.\n", err)
	out := a.fallback(tr, err)
	out.Truncated = truncated
	return out
}

func (a *StructuredAnalyzer) fallback(tr transcript.Transcript, reason error) Analysis {
	return Analysis{
		Result:   a.heuristic.Analyze(tr),
		Source:   SourceHeuristic,
		Fallback: reason,
	}
}
