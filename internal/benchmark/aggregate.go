// internal/benchmark/aggregate.go
package benchmark

// Stats is one set of per-request measurements.
type Stats struct {
	GenerationTime  float64 `json:"generation_time_s"`
	TokensGenerated float64 `json:"tokens_generated"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// ModelSummary aggregates a model's records across tasks.
type ModelSummary struct {
	Model        string `json:"model"`
	Runs         int    `json:"runs"`
	AverageStats Stats  `json:"average"`
	MinStats     Stats  `json:"min"`
	MaxStats     Stats  `json:"max"`
}

// Summarize groups records by model, in the order of models. Models without
// records are reported with Runs == 0 and zero stats.
func Summarize(models []string, records []Record) []ModelSummary {
	byModel := make(map[string][]Record, len(models))
	for _, r := range records {
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	out := make([]ModelSummary, 0, len(models))
	for _, model := range uniqueModels(models) {
		summary := ModelSummary{Model: model}
		calculateAggregates(&summary, byModel[model])
		out = append(out, summary)
	}
	return out
}

// calculateAggregates fills the average, min and max statistics of summary.
func calculateAggregates(summary *ModelSummary, records []Record) {
	summary.Runs = len(records)
	if len(records) == 0 {
		return
	}

	first := statsOf(records[0])
	summary.MinStats = first
	summary.MaxStats = first

	var total Stats
	for _, r := range records {
		s := statsOf(r)
		total.GenerationTime += s.GenerationTime
		total.TokensGenerated += s.TokensGenerated
		total.TokensPerSecond += s.TokensPerSecond

		summary.MinStats.GenerationTime = min(summary.MinStats.GenerationTime, s.GenerationTime)
		summary.MaxStats.GenerationTime = max(summary.MaxStats.GenerationTime, s.GenerationTime)
		summary.MinStats.TokensGenerated = min(summary.MinStats.TokensGenerated, s.TokensGenerated)
		summary.MaxStats.TokensGenerated = max(summary.MaxStats.TokensGenerated, s.TokensGenerated)
		summary.MinStats.TokensPerSecond = min(summary.MinStats.TokensPerSecond, s.TokensPerSecond)
		summary.MaxStats.TokensPerSecond = max(summary.MaxStats.TokensPerSecond, s.TokensPerSecond)
	}

	count := float64(len(records))
	summary.AverageStats = Stats{
		GenerationTime:  total.GenerationTime / count,
		TokensGenerated: total.TokensGenerated / count,
		TokensPerSecond: total.TokensPerSecond / count,
	}
}

func statsOf(r Record) Stats {
	return Stats{
		GenerationTime:  r.GenerationTime,
		TokensGenerated: float64(r.TokensGenerated),
		TokensPerSecond: r.TokensPerSecond,
	}
}

// Lookup returns the record for (model, task), if the run produced one.
func Lookup(records []Record, model, task string) (Record, bool) {
	for _, r := range records {
		if r.Model == model && r.Task == task {
			return r, true
		}
	}
	return Record{}, false
}
