package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names written by WriteFiles.
const (
	FileReport      = "REPORT.md"
	FileScores      = "SCORES.csv"
	FileCosts       = "COSTS.csv"
	FileArbitrage   = "ARBITRAGE.csv"
	FileAdvice      = "ADVICE.csv"
	FileBottlenecks = "BOTTLENECKS.csv"
)

// WriteFiles renders every section into dir and returns the written paths.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		name    string
		content string
	}{
		{FileReport, RenderMarkdown(r)},
		{FileScores, RenderScoresCSV(r.Scores)},
		{FileCosts, RenderCostsCSV(r.Costs)},
		{FileArbitrage, RenderArbitrageCSV(r)},
		{FileAdvice, RenderAdviceCSV(r)},
		{FileBottlenecks, RenderBottlenecksCSV(r)},
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := os.WriteFile(path, []byte(o.content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", o.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
