package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Subdirectories created inside every lesson directory.
const (
	AssetsDir  = "assets"
	ScriptsDir = "scripts"
)

// fallbackSlug replaces a title with no usable characters.
const fallbackSlug = "aula"

// Layout maps (title, module, lesson) to a directory tree:
// <root>/<module pattern>/<lesson pattern>.
type Layout struct {
	root   string
	module Pattern
	lesson Pattern
}

// NewLayout validates both patterns. The module pattern may use {modulo};
// the lesson pattern may use {modulo}, {numero} and {slug}.
func NewLayout(root, modulePattern, lessonPattern string) (Layout, error) {
	module, err := ParsePattern(modulePattern, VarModulo)
	if err != nil {
		return Layout{}, fmt.Errorf("output base dir: %w", err)
	}
	lesson, err := ParsePattern(lessonPattern, VarModulo, VarNumero, VarSlug)
	if err != nil {
		return Layout{}, fmt.Errorf("lesson dir pattern: %w", err)
	}
	return Layout{root: root, module: module, lesson: lesson}, nil
}

// Dir returns the lesson directory without touching the filesystem.
func (l Layout) Dir(title string, modulo, aula int) (string, error) {
	slug := Slug(title)
	if slug == "" {
		slug = fallbackSlug
	}
	vars := map[string]any{VarModulo: modulo, VarNumero: aula, VarSlug: slug}

	moduleDir, err := l.module.Render(vars)
	if err != nil {
		return "", err
	}
	lessonDir, err := l.lesson.Render(vars)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, moduleDir, lessonDir), nil
}

// Create makes the lesson directory with its assets/ and scripts/
// subdirectories and returns its path. Existing directories are reused.
func (l Layout) Create(title string, modulo, aula int) (string, error) {
	dir, err := l.Dir(title, modulo, aula)
	if err != nil {
		return "", err
	}
	for _, sub := range []string{AssetsDir, ScriptsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			return "", fmt.Errorf("create lesson directory: %w", err)
		}
	}
	return dir, nil
}
