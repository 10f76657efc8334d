package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-aula/internal/transcript"
)

// keyword maps a lower-case substring to the technology name it signals.
type keyword struct {
	match string
	name  string
}

// techKeywords is checked in order; the order decides which technologies
// reach the summary and tags.
var techKeywords = []keyword{
	{"docker", "Docker"},
	{"n8n", "N8N"},
	{"postgres", "PostgreSQL"},
	{"redis", "Redis"},
	{"traefik", "Traefik"},
	{"portainer", "Portainer"},
	{"javascript", "JavaScript"},
	{"python", "Python"},
	{"nodejs", "Node.js"},
	{"react", "React"},
	{"vue", "Vue.js"},
	{"api", "API"},
	{"webhook", "Webhook"},
	{"json", "JSON"},
	{"sql", "SQL"},
	{"html", "HTML"},
	{"css", "CSS"},
}

// Arguments are Unicode words: "mkdir área" must match in full.
var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`docker[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`npm[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`pip[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`git[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`sudo[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`chmod[\s\p{Zs}]+\p{Nd}+`),
	regexp.MustCompile(`mkdir[\s\p{Zs}]+[\p{L}\p{N}_]+`),
	regexp.MustCompile(`cd[\s\p{Zs}]+[\p{L}\p{N}_]+`),
}

const (
	matchesPerPattern = 3
	maxTechnologies   = 5
	maxCommands       = 5
)

// Heuristic builds a Result from keyword and command matches alone.
// It needs no network and cannot fail.
type Heuristic struct{}

// Analyze fills every field from fixed templates and the matches found
// in the lower-cased transcript text.
func (Heuristic) Analyze(tr transcript.Transcript) Result {
	text := strings.ToLower(tr.Text)
	techs := DetectTechnologies(text)
	commands := DetectCommands(text)

	subject := "desenvolvimento"
	if len(techs) > 0 {
		subject = strings.Join(techs[:min(3, len(techs))], ", ")
	}
	name := tr.Metadata.FileName
	if name == "" {
		name = "Aula"
	}

	tags := []string{"aula", "técnico", "programação"}
	tags = append(tags, techs[:min(2, len(techs))]...)

	return Result{
		Title: "Aula - " + name,
		Summary: fmt.Sprintf("Esta aula aborda conteúdo técnico relacionado a %s. "+
			"O conteúdo tem duração de aproximadamente %s e apresenta conceitos práticos "+
			"e teóricos importantes para o aprendizado.", subject, durationLabel(tr.Duration)),
		KeyPoints:         []string{"Conteúdo técnico prático", "Conceitos fundamentais", "Exemplos aplicados"},
		Technologies:      techs[:min(maxTechnologies, len(techs))],
		Commands:          commands[:min(maxCommands, len(commands))],
		Concepts:          []Concept{},
		Difficulty:        Intermediate,
		EstimatedDuration: durationLabel(tr.Duration),
		Prerequisites:     []string{"Conhecimento básico de programação"},
		Objectives:        []string{"Compreender os conceitos apresentados", "Aplicar conhecimentos práticos"},
		Tags:              tags,
	}
}

// DetectTechnologies returns, in vocabulary order, every technology whose
// keyword occurs in lower-case text. The result is never nil.
func DetectTechnologies(text string) []string {
	out := []string{}
	for _, k := range techKeywords {
		if strings.Contains(text, k.match) {
			out = append(out, k.name)
		}
	}
	return out
}

// DetectCommands returns up to three matches per command pattern, in
// pattern order. The result is never nil.
func DetectCommands(text string) []string {
	out := []string{}
	for _, re := range commandPatterns {
		out = append(out, re.FindAllString(text, matchesPerPattern)...)
	}
	return out
}
