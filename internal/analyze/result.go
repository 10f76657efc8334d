// Package analyze turns a transcript into a structured lesson analysis.
//
// The preferred path asks a remote model for JSON constrained to a fixed
// schema. Any failure on that path (no client, transport error, empty or
// malformed payload) falls back to a local keyword heuristic, so Analyze
// always returns a fully populated Result.
package analyze

import (
	"fmt"
	"strings"

	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/transcript"
)

// Difficulty levels accepted in Result.Difficulty.
const (
	Basic        = "básico"
	Intermediate = "intermediário"
	Advanced     = "avançado"
)

// DefaultTitle is used when the model returns no title.
const DefaultTitle = "Aula Técnica"

// Concept is a technical term explained in the lesson.
type Concept struct {
	Name       string `json:"conceito"`
	Definition string `json:"definicao"`
}

// Result is the lesson analysis. Every slice is non-nil after Normalize
// or Heuristic, so the JSON form never contains null.
type Result struct {
	Title             string    `json:"titulo_sugerido"`
	Summary           string    `json:"resumo_executivo"`
	KeyPoints         []string  `json:"pontos_chave"`
	Technologies      []string  `json:"tecnologias_mencionadas"`
	Commands          []string  `json:"comandos_codigo"`
	Concepts          []Concept `json:"conceitos_importantes"`
	Difficulty        string    `json:"nivel_dificuldade"`
	EstimatedDuration string    `json:"duracao_estimada"`
	Prerequisites     []string  `json:"pre_requisitos"`
	Objectives        []string  `json:"objetivos_aprendizado"`
	Tags              []string  `json:"tags"`
}

// durationLabel renders a transcript duration as "N minutos".
func durationLabel(seconds float64) string {
	return fmt.Sprintf("%d minutos", format.WholeMinutes(seconds))
}

// canonicalDifficulty maps model spellings such as "Avancado" or
// "INTERMEDIÁRIO" onto the three levels. Anything else is Intermediate.
func canonicalDifficulty(s string) string {
	switch strings.ToLower(format.Fold(strings.TrimSpace(s))) {
	case "basico", "basic", "iniciante":
		return Basic
	case "avancado", "advanced":
		return Advanced
	default:
		return Intermediate
	}
}

// fill replaces missing values with neutral defaults derived from tr.
func fill(r Result, tr transcript.Transcript) Result {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = DefaultTitle
	}
	r.Difficulty = canonicalDifficulty(r.Difficulty)
	if strings.TrimSpace(r.EstimatedDuration) == "" {
		r.EstimatedDuration = durationLabel(tr.Duration)
	}
	r.KeyPoints = nonNil(r.KeyPoints)
	r.Technologies = nonNil(r.Technologies)
	r.Commands = nonNil(r.Commands)
	r.Prerequisites = nonNil(r.Prerequisites)
	r.Objectives = nonNil(r.Objectives)
	r.Tags = nonNil(r.Tags)
	if r.Concepts == nil {
		r.Concepts = []Concept{}
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
