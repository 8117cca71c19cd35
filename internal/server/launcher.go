// internal/server/launcher.go
package server

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ProcessLauncher runs "<binary> serve" as a detached background process.
type ProcessLauncher struct {
	// Binary is the server executable name or path. Empty means "ollama".
	Binary string

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	start    func(*exec.Cmd) error
}

// NewProcessLauncher returns a launcher for binary.
func NewProcessLauncher(binary string) *ProcessLauncher {
	return &ProcessLauncher{
		Binary:   binary,
		lookPath: exec.LookPath,
		stat:     os.Stat,
		start:    startDetached,
	}
}

// Launch locates the executable and starts it without waiting for it.
func (l *ProcessLauncher) Launch() error {
	path, err := l.resolve()
	if err != nil {
		return err
	}

	cmd := exec.Command(path, "serve")
	cmd.Env = os.Environ()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", path, err)
	}
	return nil
}

// resolve finds the executable on PATH, then in the usual install locations.
func (l *ProcessLauncher) resolve() (string, error) {
	binary := l.Binary
	if binary == "" {
		binary = "ollama"
	}
	if filepath.IsAbs(binary) {
		if _, err := l.stat(binary); err != nil {
			return "", fmt.Errorf("server binary %s: %w", binary, err)
		}
		return binary, nil
	}
	if path, err := l.lookPath(binary); err == nil {
		return path, nil
	}
	for _, candidate := range installCandidates(binary) {
		if _, err := l.stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found in PATH or common installation directories", binary)
}

func installCandidates(binary string) []string {
	if runtime.GOOS == "windows" {
		exe := binary
		if filepath.Ext(exe) == "" {
			exe += ".exe"
		}
		var paths []string
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			paths = append(paths, filepath.Join(dir, "Programs", "Ollama", exe))
		}
		return append(paths,
			filepath.Join(`C:\Program Files\Ollama`, exe),
			filepath.Join(`C:\Program Files (x86)\Ollama`, exe),
		)
	}

	paths := []string{
		filepath.Join("/usr/local/bin", binary),
		filepath.Join("/usr/bin", binary),
		filepath.Join("/opt/ollama", binary),
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths,
			filepath.Join(home, ".local", "bin", binary),
			filepath.Join(home, "bin", binary),
		)
	}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "/Applications/Ollama.app/Contents/Resources/"+binary)
	}
	return paths
}
