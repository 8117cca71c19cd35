// internal/report/html.go
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"

	"github.com/mwiater/ollabench/internal/benchmark"
)

type htmlReportData struct {
	Title       string
	RunID       string
	StartedAt   string
	MetricsJSON template.JS
}

type chartPayload struct {
	Models    []string                 `json:"models"`
	Tasks     []chartTask              `json:"tasks"`
	Summaries []benchmark.ModelSummary `json:"summaries"`
}

// chartTask holds one value per model, in model order. Missing pairs are null.
type chartTask struct {
	Name            string     `json:"name"`
	Prompt          string     `json:"prompt"`
	GenerationTime  []*float64 `json:"generation_time"`
	TokensPerSecond []*float64 `json:"tokens_per_second"`
}

// GenerateHTML renders a standalone HTML page with the summary and one pair
// of charts per task.
func GenerateHTML(result *benchmark.RunResult) (string, error) {
	payload, err := json.Marshal(condense(result))
	if err != nil {
		return "", err
	}

	viewModel := htmlReportData{
		Title:       "ollabench: Model Benchmark Report",
		RunID:       result.RunID,
		StartedAt:   result.StartedAt.Format("2006-01-02 15:04:05"),
		MetricsJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML writes the page produced by GenerateHTML to path.
func WriteHTML(path string, result *benchmark.RunResult) error {
	if result == nil {
		return fmt.Errorf("no benchmark results to write")
	}
	page, err := GenerateHTML(result)
	if err != nil {
		return fmt.Errorf("error rendering HTML report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return fmt.Errorf("error writing HTML report: %w", err)
	}
	log.Printf("HTML report written to %s", path)
	return nil
}

func condense(result *benchmark.RunResult) chartPayload {
	tasks := make([]chartTask, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		ct := chartTask{
			Name:            task.Name,
			Prompt:          task.Prompt,
			GenerationTime:  make([]*float64, len(result.Models)),
			TokensPerSecond: make([]*float64, len(result.Models)),
		}
		for i, model := range result.Models {
			if r, ok := benchmark.Lookup(result.Records, model, task.Name); ok {
				gen, tps := r.GenerationTime, r.TokensPerSecond
				ct.GenerationTime[i] = &gen
				ct.TokensPerSecond[i] = &tps
			}
		}
		tasks = append(tasks, ct)
	}
	return chartPayload{
		Models:    result.Models,
		Tasks:     tasks,
		Summaries: benchmark.Summarize(result.Models, result.Records),
	}
}

var htmlReportTemplate = template.Must(template.New("benchmark-report").Parse(htmlReportTemplateHTML))

const htmlReportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body { background-color: var(--light); color: var(--text); }
    .navbar-dark { background-color: var(--primary) !important; }
    .chart-card {
      background: var(--background);
      border-radius: 16px;
      padding: 1.5rem;
      box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1);
      border: 1px solid var(--border);
      margin-bottom: 1.5rem;
    }
    .chart-title { font-size: 1.25rem; font-weight: 700; margin-bottom: 0.25rem; }
    .chart-subtitle { color: var(--secondary); margin-bottom: 1rem; }
    .chart-canvas { position: relative; height: 320px; }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark mb-4">
    <div class="container">
      <span class="navbar-brand">{{ .Title }}</span>
      <span class="text-light small">Run {{ .RunID }} · {{ .StartedAt }}</span>
    </div>
  </nav>
  <main class="container">
    <div class="chart-card">
      <div class="chart-title">Summary</div>
      <table class="table table-striped table-bordered" id="summaryTable">
        <thead>
          <tr>
            <th>Model</th><th>Runs</th><th>Avg Gen Time (s)</th><th>Avg Tokens</th><th>Avg Tokens/s</th>
          </tr>
        </thead>
        <tbody></tbody>
      </table>
    </div>
    <div id="taskCharts"></div>
  </main>

  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    const metrics = {{ .MetricsJSON }};

    function fmt(v) { return v.toFixed(2); }

    function fillSummary(summaries) {
      const body = document.querySelector('#summaryTable tbody');
      summaries.forEach(s => {
        const row = document.createElement('tr');
        const cells = s.runs === 0
          ? [s.model, '0', '-', '-', '-']
          : [s.model, String(s.runs), fmt(s.average.generation_time_s), fmt(s.average.tokens_generated), fmt(s.average.tokens_per_second)];
        cells.forEach(text => {
          const td = document.createElement('td');
          td.textContent = text;
          row.appendChild(td);
        });
        body.appendChild(row);
      });
    }

    function addChart(parent, title, subtitle, labels, values, color) {
      const card = document.createElement('div');
      card.className = 'chart-card';
      const heading = document.createElement('div');
      heading.className = 'chart-title';
      heading.textContent = title;
      const sub = document.createElement('div');
      sub.className = 'chart-subtitle';
      sub.textContent = subtitle;
      const wrap = document.createElement('div');
      wrap.className = 'chart-canvas';
      const canvas = document.createElement('canvas');
      wrap.appendChild(canvas);
      card.append(heading, sub, wrap);
      parent.appendChild(card);

      new Chart(canvas, {
        type: 'bar',
        data: { labels: labels, datasets: [{ label: title, data: values, backgroundColor: color }] },
        options: { maintainAspectRatio: false, plugins: { legend: { display: false } } }
      });
    }

    fillSummary(metrics.summaries);
    const charts = document.getElementById('taskCharts');
    metrics.tasks.forEach(task => {
      addChart(charts, 'Generation Time (s) · ' + task.name, task.prompt, metrics.models, task.generation_time, '#3B82F6');
      addChart(charts, 'Tokens per Second · ' + task.name, task.prompt, metrics.models, task.tokens_per_second, '#10B981');
    });
  </script>
</body>
</html>
`
