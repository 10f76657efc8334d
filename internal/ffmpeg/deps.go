package ffmpeg

import (
	"os"
	"os/exec"
)

// envProvider abstracts binary lookup on the host.
type envProvider interface {
	Stat(name string) (os.FileInfo, error)
	LookPath(file string) (string, error)
}

// Compile-time interface verification.
var _ envProvider = osEnvProvider{}

// osEnvProvider implements envProvider using the os and exec packages.
type osEnvProvider struct{}

func (osEnvProvider) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osEnvProvider) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}
