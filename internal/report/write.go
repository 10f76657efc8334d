package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alnah/go-aula/internal/analyze"
	"github.com/alnah/go-aula/internal/format"
	"github.com/alnah/go-aula/internal/transcript"
)

// File names inside a lesson directory.
const (
	TranscriptFile = "transcricao.json"
	AnalysisFile   = "analise.json"
	ReadmeFile     = "README.md"
	CommandsFile   = "comandos.md"
)

//go:embed readme.md.tmpl
var readmeSource string

var readmeTemplate = template.Must(template.New("readme").Funcs(template.FuncMap{
	"title":     titleCase,
	"thousands": format.Thousands,
	"minutes":   format.Minutes,
	"tags":      backticks,
}).Parse(readmeSource))

// titleCase builds a Caser per call; Casers are not safe to share.
func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}

type readmeData struct {
	Analysis   analyze.Result
	Transcript transcript.Transcript
}

func backticks(tags []string) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = "`" + t + "`"
	}
	return strings.Join(quoted, ", ")
}

// RenderReadme writes the lesson README for r and tr.
func RenderReadme(w io.Writer, r analyze.Result, tr transcript.Transcript) error {
	return readmeTemplate.Execute(w, readmeData{Analysis: r, Transcript: tr})
}

// RenderCommands writes one fenced block per command.
func RenderCommands(w io.Writer, commands []string) error {
	var b bytes.Buffer
	b.WriteString("# Comandos da Aula\n\n")
	for i, cmd := range commands {
		fmt.Fprintf(&b, "## Comando %d\n```bash\n%s\n```\n\n", i+1, cmd)
	}
	_, err := w.Write(b.Bytes())
	return err
}

// Save writes the transcript, the analysis, the README and, when there
// are commands, scripts/comandos.md into dir. It returns the paths
// written, in order, even when a later file fails.
func Save(dir string, tr transcript.Transcript, r analyze.Result) ([]string, error) {
	type step struct {
		path  string
		write func(string) error
	}
	var written []string

	steps := []step{
		{filepath.Join(dir, TranscriptFile), func(p string) error { return writeJSON(p, tr) }},
		{filepath.Join(dir, AnalysisFile), func(p string) error { return writeJSON(p, r) }},
		{filepath.Join(dir, ReadmeFile), func(p string) error {
			return writeFile(p, func(w io.Writer) error { return RenderReadme(w, r, tr) })
		}},
	}
	if len(r.Commands) > 0 {
		steps = append(steps, step{filepath.Join(dir, ScriptsDir, CommandsFile), func(p string) error {
			return writeFile(p, func(w io.Writer) error { return RenderCommands(w, r.Commands) })
		}})
	}

	for _, s := range steps {
		if err := s.write(s.path); err != nil {
			return written, err
		}
		written = append(written, s.path)
	}
	return written, nil
}

// LegacyPath is where transcription-only mode stores its result.
func LegacyPath(tempDir, fileName string) string {
	return filepath.Join(tempDir, fileName+"_transcription.json")
}

// WriteLegacy stores tr at LegacyPath and returns that path.
func WriteLegacy(tempDir, fileName string, tr transcript.Transcript) (string, error) {
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	p := LegacyPath(tempDir, fileName)
	return p, writeJSON(p, tr)
}

// writeJSON encodes v with two-space indentation and without HTML
// escaping, so accented text and "<", "&" stay readable.
func writeJSON(path string, v any) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFile renders into a temp file in the target directory and renames
// it over path, so readers never see a partial file.
func writeFile(path string, render func(io.Writer) error) error {
	name := filepath.Base(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if err := render(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
