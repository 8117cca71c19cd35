package appconfig

import (
	"strings"
	"testing"

	"github.com/mwiater/ollabench/internal/benchmark"
)

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    []string
		wantErr string
	}{
		{
			name: "sequence",
			doc:  "- name: a\n  prompt: pa\n- name: b\n  prompt: pb\n  max_tokens: 50\n",
			want: []string{"a", "b"},
		},
		{
			name: "mapping",
			doc:  "tasks:\n  - name: a\n    prompt: pa\n",
			want: []string{"a"},
		},
		{
			name: "json",
			doc:  `[{"name": "a", "prompt": "pa", "max_tokens": 10}]`,
			want: []string{"a"},
		},
		{
			name: "empty",
			doc:  "",
			want: []string{},
		},
		{
			name:    "missing prompt",
			doc:     "- name: a\n",
			wantErr: "prompt",
		},
		{
			name:    "bad token cap",
			doc:     "- name: a\n  prompt: pa\n  max_tokens: 0\n",
			wantErr: "max_tokens",
		},
		{
			name:    "unknown field",
			doc:     "- name: a\n  prompt: pa\n  model: x\n",
			wantErr: "model",
		},
		{
			name:    "mapping without tasks",
			doc:     "prompts: []\n",
			wantErr: "no \"tasks\" key",
		},
		{
			name:    "scalar",
			doc:     "hello",
			wantErr: "unexpected document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := ParseTasks([]byte(tt.doc))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTasks: %v", err)
			}
			if tasks == nil || len(tasks) != len(tt.want) {
				t.Fatalf("expected %d tasks, got %+v", len(tt.want), tasks)
			}
			for i, name := range tt.want {
				if tasks[i].Name != name {
					t.Fatalf("task %d: expected %s, got %s", i, name, tasks[i].Name)
				}
			}
		})
	}
}

func TestParseTasksKeepsTokenCap(t *testing.T) {
	tasks, err := ParseTasks([]byte("- name: a\n  prompt: pa\n  max_tokens: 50\n"))
	if err != nil {
		t.Fatalf("ParseTasks: %v", err)
	}
	if tasks[0].MaxTokens != 50 || tasks[0].Tokens() != 50 {
		t.Fatalf("unexpected token cap: %+v", tasks[0])
	}
}

func TestValidateTasks(t *testing.T) {
	if err := ValidateTasks([]benchmark.Task{{Name: "a", Prompt: "p"}}); err != nil {
		t.Fatalf("expected valid tasks, got %v", err)
	}
	if err := ValidateTasks([]benchmark.Task{{Name: "a", Prompt: "p", MaxTokens: -3}}); err == nil {
		t.Fatal("expected negative token cap to fail validation")
	}
}
