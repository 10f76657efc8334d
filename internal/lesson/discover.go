package lesson

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// VideoExtensions lists the file extensions Discover accepts.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".m4v"}

var (
	moduloRe = regexp.MustCompile(`(?i)modulo[-_]?(\d+)`)
	aulaRe   = regexp.MustCompile(`(?i)aula[-_]?(\d+)`)
)

// IsVideo reports whether path has a video extension, ignoring case.
func IsVideo(path string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(path)))
}

// Discover walks dir recursively and returns every video file, sorted.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, ErrDirNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory: %w", dir, ErrDirNotFound)
	}

	var videos []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsVideo(path) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoVideos)
	}
	slices.Sort(videos)
	return videos, nil
}

// NumberFor picks the module and lesson numbers for a video. Defaults are
// startModulo and the 1-based batch index; "modulo<N>" and "aula<N>" in
// the file name (with optional - or _) override them.
func NumberFor(path string, index, startModulo int) (modulo, aula int) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	modulo, aula = startModulo, index
	if m := moduloRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			modulo = n
		}
	}
	if m := aulaRe.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			aula = n
		}
	}
	return modulo, aula
}
