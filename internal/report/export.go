package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"pimaknn/internal/evaluation"
)

// ExportCharts writes the data behind the two charts as CSV files into dir:
// the accuracy series per neighbour count and the label counts.
func ExportCharts(dir, runID string, sweep []evaluation.SweepResult, counts map[int]int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create export dir: %w", err)
	}

	sweepFile := filepath.Join(dir, fmt.Sprintf("sweep_%s.csv", runID))
	sweepRows := [][]string{{"n_neighbors", "training_accuracy", "test_accuracy"}}
	for _, res := range sweep {
		sweepRows = append(sweepRows, []string{
			strconv.Itoa(res.Neighbors),
			fmt.Sprintf("%.4f", res.TrainAccuracy),
			fmt.Sprintf("%.4f", res.TestAccuracy),
		})
	}
	if err := writeCSV(sweepFile, sweepRows); err != nil {
		return nil, err
	}

	countsFile := filepath.Join(dir, fmt.Sprintf("outcome_counts_%s.csv", runID))
	classes := make([]int, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	countRows := [][]string{{"outcome", "count"}}
	for _, class := range classes {
		countRows = append(countRows, []string{strconv.Itoa(class), strconv.Itoa(counts[class])})
	}
	if err := writeCSV(countsFile, countRows); err != nil {
		return nil, err
	}

	log.Info().Str("sweep", sweepFile).Str("counts", countsFile).Msg("exported chart data")
	return []string{sweepFile, countsFile}, nil
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("could not write %s: %w", filename, err)
	}
	return nil
}
