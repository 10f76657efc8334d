package ffmpeg

// Notes:
// - Resolver tests use a mock envProvider: Stat hits the real filesystem
//   under t.TempDir(), LookPath is a map.
// - CheckVersion uses an injected run function.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockEnv implements envProvider.
type mockEnv struct {
	onPath map[string]string
}

func (m mockEnv) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

func (m mockEnv) LookPath(file string) (string, error) {
	if p, ok := m.onPath[file]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

// touch creates an empty file and returns its path.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, nil, 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestResolver_Resolve - configured path, then PATH
// ---------------------------------------------------------------------------

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("configured path wins", func(t *testing.T) {
		t.Parallel()

		bin := touch(t, t.TempDir(), "ffmpeg")
		r := NewResolver(WithEnvProvider(mockEnv{onPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"}}))

		got, err := r.Resolve(bin, "ffmpeg")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != bin {
			t.Errorf("Resolve() = %q, want %q", got, bin)
		}
	})

	t.Run("missing configured path falls back to PATH", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(WithEnvProvider(mockEnv{onPath: map[string]string{"ffprobe": "/usr/bin/ffprobe"}}))

		got, err := r.Resolve(filepath.Join(t.TempDir(), "bin", "ffprobe"), "ffprobe")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "/usr/bin/ffprobe" {
			t.Errorf("Resolve() = %q, want /usr/bin/ffprobe", got)
		}
	})

	t.Run("directory is not a binary", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(WithEnvProvider(mockEnv{onPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"}}))

		got, err := r.Resolve(t.TempDir(), "ffmpeg")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "/usr/bin/ffmpeg" {
			t.Errorf("Resolve() = %q, want PATH fallback", got)
		}
	})

	t.Run("nothing found gives instructions", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(WithEnvProvider(mockEnv{}), WithPlatform("linux"))

		_, err := r.Resolve("./bin/ffmpeg", "ffmpeg")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
		}
		for _, want := range []string{"./bin/ffmpeg", "apt install ffmpeg", "FFMPEG_PATH"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error should mention %q, got:\n%s", want, err)
			}
		}
	})
}

func TestResolver_InstallInstructions(t *testing.T) {
	t.Parallel()

	for _, goos := range []string{"darwin", "linux", "windows", "plan9"} {
		r := NewResolver(WithPlatform(goos))
		if got := r.installInstructions(); !strings.Contains(got, "FFPROBE_PATH") {
			t.Errorf("installInstructions(%s) should mention FFPROBE_PATH, got %q", goos, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestParseVersion / TestCheckVersion
// ---------------------------------------------------------------------------

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		banner string
		want   int
		ok     bool
	}{
		{"ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc", 6, true},
		{"ffmpeg version n7.0-2-g1234 Copyright", 7, true},
		{"ffmpeg version 3.4.8-0ubuntu0.2", 3, true},
		{"ffmpeg version git-2024-01-01", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseVersion(tt.banner)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseVersion(%q) = (%d, %v), want (%d, %v)", tt.banner, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	t.Parallel()

	t.Run("reads stdout banner", func(t *testing.T) {
		t.Parallel()

		e := NewExecutor(WithRun(func(ctx context.Context, path string, args []string) (Output, error) {
			if len(args) != 1 || args[0] != "-version" {
				t.Errorf("args = %v, want [-version]", args)
			}
			return Output{Stdout: "ffmpeg version 6.1.1 Copyright"}, nil
		}))

		major, ok := CheckVersion(context.Background(), e, "ffmpeg")
		if !ok || major != 6 {
			t.Errorf("CheckVersion() = (%d, %v), want (6, true)", major, ok)
		}
	})

	t.Run("run failure is not ok", func(t *testing.T) {
		t.Parallel()

		e := NewExecutor(WithRun(func(ctx context.Context, path string, args []string) (Output, error) {
			return Output{}, errors.New("no such file")
		}))

		if _, ok := CheckVersion(context.Background(), e, "ffmpeg"); ok {
			t.Error("CheckVersion() ok = true, want false")
		}
	})
}
