// internal/appconfig/tasks.go
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mwiater/ollabench/internal/benchmark"
	"gopkg.in/yaml.v3"
)

// LoadTasksFile reads a YAML (or JSON) task list. The document is either a
// sequence of tasks or a mapping with a "tasks" key.
func LoadTasksFile(path string) ([]benchmark.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read tasks file %q: %w", path, err)
	}
	tasks, err := ParseTasks(data)
	if err != nil {
		return nil, fmt.Errorf("tasks file %q: %w", path, err)
	}
	return tasks, nil
}

// ParseTasks decodes and validates a task document.
func ParseTasks(data []byte) ([]benchmark.Task, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	var items any
	switch v := doc.(type) {
	case nil:
		return []benchmark.Task{}, nil
	case []any:
		items = v
	case map[string]any:
		list, ok := v["tasks"]
		if !ok {
			return nil, fmt.Errorf("parse tasks: mapping has no \"tasks\" key")
		}
		items = list
	default:
		return nil, fmt.Errorf("parse tasks: unexpected document of type %T", doc)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if err := validateTaskDocument(raw); err != nil {
		return nil, err
	}

	var tasks []benchmark.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if tasks == nil {
		tasks = []benchmark.Task{}
	}
	return tasks, nil
}
