// internal/logging/logging.go
// Package logging routes the standard logger to stdout and an optional log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
	quiet   bool
)

// Init sends log output to stdout and, when logPath is set, appends it to that file.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
	}

	applyOutput()
	return nil
}

// SetConsole turns the stdout copy of the log on or off. The file copy is
// unaffected. Full-screen views switch it off while they own the terminal.
func SetConsole(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = !enabled
	applyOutput()
}

// applyOutput must be called with mu held.
func applyOutput() {
	var writers []io.Writer
	if !quiet {
		writers = append(writers, os.Stdout)
	}
	if logFile != nil {
		writers = append(writers, logFile)
	}
	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(io.MultiWriter(writers...))
}

// Close restores stderr logging and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles request tracing and Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// LogEvent writes one formatted line to the log.
func LogEvent(format string, args ...any) {
	log.Println(fmt.Sprintf(format, args...))
}

// Debugf logs with a [DEBUG] prefix when debug output is enabled.
func Debugf(format string, args ...any) {
	if !DebugEnabled() {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// LogRequest traces a payload exchanged with the inference server. It is a no-op unless debug is enabled.
func LogRequest(direction, endpoint, model string, payload any) {
	if !DebugEnabled() {
		return
	}
	log.Println(buildRequestMessage(direction, endpoint, model, payload))
}

func buildRequestMessage(direction, endpoint, model string, payload any) string {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	endpointValue := strings.TrimSpace(endpoint)
	if endpointValue == "" {
		endpointValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", dir), fmt.Sprintf("endpoint=%s", endpointValue)}
	if model = strings.TrimSpace(model); model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", model))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return strings.TrimSpace(string(v))
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
