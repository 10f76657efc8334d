package analyze

import (
	"fmt"
	"unicode/utf8"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// OmissionMarker separates the kept head and tail of a truncated transcript.
const OmissionMarker = "\n\n[... CONTEÚDO INTERMEDIÁRIO OMITIDO ...]\n\n"

// Estimator approximates how many model tokens a text costs.
type Estimator interface {
	Estimate(text string) int
}

// CharRatio estimates one token per PerToken bytes.
type CharRatio struct {
	PerToken int
}

// Estimate returns len(text)/PerToken. PerToken below 1 counts bytes.
func (c CharRatio) Estimate(text string) int {
	if c.PerToken < 1 {
		return len(text)
	}
	return len(text) / c.PerToken
}

// DefaultEstimator is the 4-bytes-per-token rule of thumb.
var DefaultEstimator Estimator = CharRatio{PerToken: 4}

// TokenizerEstimator counts real tokens with a HuggingFace tokenizer.json.
type TokenizerEstimator struct {
	tok *tokenizer.Tokenizer
}

// NewTokenizerEstimator loads a tokenizer.json file.
func NewTokenizerEstimator(path string) (*TokenizerEstimator, error) {
	tok, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &TokenizerEstimator{tok: tok}, nil
}

// Estimate returns the encoded token count, or the byte-ratio estimate
// when encoding fails.
func (e *TokenizerEstimator) Estimate(text string) int {
	enc, err := e.tok.EncodeSingle(text)
	if err != nil {
		return DefaultEstimator.Estimate(text)
	}
	return len(enc.GetIds())
}

// Budgeter keeps a transcript within the model's context window.
type Budgeter struct {
	Max       int       // Token budget.
	Estimator Estimator // Nil means DefaultEstimator.
}

// Budget returns text unchanged when its estimate fits Max. Otherwise it
// keeps the first and last Max/3*4 bytes around OmissionMarker and
// reports true. Cut points are moved back to rune boundaries.
func (b Budgeter) Budget(text string) (string, bool) {
	if b.Max <= 0 || b.Estimate(text) <= b.Max {
		return text, false
	}

	keep := b.Max / 3 * 4
	if keep*2 >= len(text) {
		// A token-dense text can be short in bytes; keep thirds of it.
		keep = len(text) / 3
	}
	head := text[:runeStart(text, keep)]
	tail := text[runeStart(text, len(text)-keep):]
	return head + OmissionMarker + tail, true
}

// Estimate exposes the estimate used by Budget, for progress output.
func (b Budgeter) Estimate(text string) int {
	if b.Estimator == nil {
		return DefaultEstimator.Estimate(text)
	}
	return b.Estimator.Estimate(text)
}

// runeStart moves i back to the start of the rune containing it.
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
