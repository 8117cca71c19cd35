// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mwiater/ollabench/internal/benchmark"
	"github.com/mwiater/ollabench/internal/ollama"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path checked when the default file is absent.
	legacyConfigPath = "config.json"
	// DefaultExportCSV is where the CSV export is written unless overridden.
	DefaultExportCSV = "model_benchmark_results.csv"
	// defaultPullTimeout bounds a single model download.
	defaultPullTimeout = 30 * time.Minute
	// defaultListTimeout bounds /tags listing and probing.
	defaultListTimeout = 10 * time.Second
	// defaultSettle is the wait after launching the server.
	defaultSettle = 5 * time.Second
)

// Config represents the top-level application configuration.
type Config struct {
	Endpoint              string           `json:"endpoint" mapstructure:"endpoint"`
	Models                []string         `json:"models" mapstructure:"models"`
	Tasks                 []benchmark.Task `json:"tasks,omitempty" mapstructure:"tasks"`
	TasksFile             string           `json:"tasksFile,omitempty" mapstructure:"tasksFile"`
	Temperature           float64          `json:"temperature" mapstructure:"temperature"`
	RequestTimeoutSeconds int              `json:"requestTimeout,omitempty" mapstructure:"requestTimeout"`
	RetryTimeoutSeconds   int              `json:"retryTimeout,omitempty" mapstructure:"retryTimeout"`
	PullTimeoutSeconds    int              `json:"pullTimeout,omitempty" mapstructure:"pullTimeout"`
	ListTimeoutSeconds    int              `json:"listTimeout,omitempty" mapstructure:"listTimeout"`
	AutoStart             bool             `json:"autoStart" mapstructure:"autoStart"`
	ServerBinary          string           `json:"serverBinary,omitempty" mapstructure:"serverBinary"`
	SettleSeconds         int              `json:"settleSeconds,omitempty" mapstructure:"settleSeconds"`
	ExportCSV             string           `json:"exportCSV,omitempty" mapstructure:"exportCSV"`
	ExportJSON            string           `json:"exportJSON,omitempty" mapstructure:"exportJSON"`
	ExportHTML            string           `json:"exportHTML,omitempty" mapstructure:"exportHTML"`
	HistoryDB             string           `json:"historyDB,omitempty" mapstructure:"historyDB"`
	LogFile               string           `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug                 bool             `json:"debug" mapstructure:"debug"`
	TUI                   bool             `json:"tui" mapstructure:"tui"`
	ConfigPath            string           `json:"-" mapstructure:"-"`
}

// Defaults returns the configuration used for any key the file leaves out.
func Defaults() Config {
	return Config{
		Endpoint:              ollama.DefaultEndpoint,
		Temperature:           benchmark.DefaultTemperature,
		RequestTimeoutSeconds: int(benchmark.DefaultRequestTimeout.Seconds()),
		RetryTimeoutSeconds:   int(benchmark.DefaultRetryTimeout.Seconds()),
		PullTimeoutSeconds:    int(defaultPullTimeout.Seconds()),
		ListTimeoutSeconds:    int(defaultListTimeout.Seconds()),
		AutoStart:             true,
		ServerBinary:          "ollama",
		SettleSeconds:         int(defaultSettle.Seconds()),
		ExportCSV:             DefaultExportCSV,
	}
}

// RequestTimeout returns the first-attempt timeout, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	return secondsOr(c.RequestTimeoutSeconds, benchmark.DefaultRequestTimeout)
}

// RetryTimeout returns the timeout of the single retry after a first-attempt timeout.
func (c Config) RetryTimeout() time.Duration {
	return secondsOr(c.RetryTimeoutSeconds, benchmark.DefaultRetryTimeout)
}

// PullTimeout returns the upper bound for one model download.
func (c Config) PullTimeout() time.Duration {
	return secondsOr(c.PullTimeoutSeconds, defaultPullTimeout)
}

// ListTimeout bounds the model listing used by the probe and the model checks.
func (c Config) ListTimeout() time.Duration {
	return secondsOr(c.ListTimeoutSeconds, defaultListTimeout)
}

// NewClient returns an inference client for Endpoint with the configured
// listing and pull timeouts.
func (c Config) NewClient() *ollama.Client {
	return ollama.New(c.Endpoint,
		ollama.WithListTimeout(c.ListTimeout()),
		ollama.WithPullTimeout(c.PullTimeout()),
	)
}

// Settle returns the wait between launching the server and re-probing it.
// Zero is allowed.
func (c Config) Settle() time.Duration {
	if c.SettleSeconds < 0 {
		return defaultSettle
	}
	return time.Duration(c.SettleSeconds) * time.Second
}

// BenchmarkOptions maps the sampling and timeout keys onto run options.
func (c Config) BenchmarkOptions() benchmark.Options {
	return benchmark.Options{
		Temperature:    c.Temperature,
		RequestTimeout: c.RequestTimeout(),
		RetryTimeout:   c.RetryTimeout(),
	}
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "ollabench.log"
}

// CSVPath returns the CSV export path. "-" disables the export.
func (c Config) CSVPath() string {
	path := strings.TrimSpace(c.ExportCSV)
	switch path {
	case "":
		return DefaultExportCSV
	case "-":
		return ""
	}
	return path
}

// ResolveTasks returns the inline tasks followed by the ones read from TasksFile.
func (c Config) ResolveTasks() ([]benchmark.Task, error) {
	tasks := append([]benchmark.Task(nil), c.Tasks...)
	if strings.TrimSpace(c.TasksFile) == "" {
		return tasks, nil
	}
	fromFile, err := LoadTasksFile(c.TasksFile)
	if err != nil {
		return nil, err
	}
	return append(tasks, fromFile...), nil
}

// Validate checks the endpoint and the inline tasks.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: expected a URL such as %s", c.Endpoint, ollama.DefaultEndpoint)
	}
	if len(c.Tasks) > 0 {
		if err := ValidateTasks(c.Tasks); err != nil {
			return err
		}
	}
	return nil
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, config.Validate()
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, config.Validate()
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath decodes the file at path over the defaults.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := Defaults()
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
