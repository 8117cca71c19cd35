// internal/models/manager.go
// Package models checks which models the inference server already holds and
// pulls the ones it does not.
package models

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/ollabench/internal/ollama"
)

// Client is the subset of the inference API the manager needs.
type Client interface {
	ListModels(ctx context.Context) ([]string, error)
	Pull(ctx context.Context, model string, handle func(ollama.PullStatus) bool) error
}

// Manager answers availability questions for one endpoint.
type Manager struct {
	client Client
}

// NewManager returns a Manager backed by client.
func NewManager(client Client) *Manager {
	return &Manager{client: client}
}

// Exists reports whether model is listed by the server. Listing or parse
// failures count as "not present".
func (m *Manager) Exists(ctx context.Context, model string) bool {
	names, err := m.client.ListModels(ctx)
	if err != nil {
		log.Printf("Error checking model %s: %v", model, err)
		return false
	}
	for _, name := range names {
		if name == model {
			return true
		}
	}
	return false
}

// EnsureLoaded pulls model and follows the status stream. A status containing
// "completed" is success and a payload carrying an error field is failure.
// A stream that ends without either is treated as success.
// Callers are expected to have checked Exists first.
func (m *Manager) EnsureLoaded(ctx context.Context, model string) bool {
	log.Printf("Loading model %s...", model)

	var (
		lastStatus string
		outcome    *bool
	)
	err := m.client.Pull(ctx, model, func(s ollama.PullStatus) bool {
		if s.Status != "" && s.Status != lastStatus {
			log.Printf("  %s: %s", model, s.Status)
			lastStatus = s.Status
		}
		if strings.Contains(strings.ToLower(s.Status), "completed") {
			ok := true
			outcome = &ok
			return false
		}
		if s.Error != nil {
			log.Printf("Error loading %s: %s", model, *s.Error)
			failed := false
			outcome = &failed
			return false
		}
		return true
	})
	if err != nil {
		log.Printf("Exception loading %s: %v", model, err)
		return false
	}
	if outcome != nil {
		if *outcome {
			log.Printf("%s was loaded successfully", model)
		}
		return *outcome
	}
	// TODO: treat a truncated stream as failure once servers reliably send a terminal status.
	log.Printf("Pull stream for %s ended without a terminal status; assuming success", model)
	return true
}

// Render lists the server's models, highlighting the ones named in configured.
func (m *Manager) Render(ctx context.Context, configured []string) ([]string, error) {
	names, err := m.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}

	modelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	configuredStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	wanted := make(map[string]struct{}, len(configured))
	for _, name := range configured {
		wanted[name] = struct{}{}
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := wanted[name]; ok {
			lines = append(lines, configuredStyle.Render(fmt.Sprintf("- %s (CONFIGURED)", name)))
			continue
		}
		lines = append(lines, modelStyle.Render(fmt.Sprintf("- %s", name)))
	}
	return lines, nil
}

// Missing returns the configured models the server does not list, in input order.
func (m *Manager) Missing(ctx context.Context, configured []string) ([]string, error) {
	names, err := m.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}
	present := make(map[string]struct{}, len(names))
	for _, name := range names {
		present[name] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{}, len(configured))
	for _, name := range configured {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
