package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pimaknn/internal/errors"
)

type CSVReader struct {
	filename string
	outcome  string
	required []string
}

// NewCSVReader creates a reader for the given file. Every column other than
// outcome becomes a feature; required lists feature columns that must exist.
func NewCSVReader(filename, outcome string, required []string) *CSVReader {
	return &CSVReader{
		filename: filename,
		outcome:  outcome,
		required: required,
	}
}

func (cr *CSVReader) LoadTable() (*Table, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset: %w", err)
	}
	defer file.Close()

	table, err := cr.Read(file)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", cr.filename, err)
	}

	rows, cols := table.Shape()
	log.Info().
		Str("file", cr.filename).
		Int("rows", rows).
		Int("cols", cols).
		Msg("loaded dataset")
	return table, nil
}

// Read parses a delimited table from r.
func (cr *CSVReader) Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}

	labelCol := -1
	features := make([]string, 0, len(headers))
	featureCols := make([]int, 0, len(headers))
	for j, h := range headers {
		if h == cr.outcome {
			labelCol = j
			continue
		}
		features = append(features, h)
		featureCols = append(featureCols, j)
	}

	if labelCol < 0 {
		return nil, errors.InvalidInput("missing required column %q", cr.outcome)
	}
	if missing := missingColumns(features, cr.required); len(missing) > 0 {
		return nil, errors.InvalidInput("missing required columns: %s", strings.Join(missing, ", "))
	}

	table := NewTable(features, cr.outcome)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading record at line %d: %w", line, err)
		}

		values := make([]decimal.Decimal, len(featureCols))
		for i, j := range featureCols {
			val, err := decimal.NewFromString(strings.TrimSpace(record[j]))
			if err != nil {
				return nil, fmt.Errorf("invalid numeric value %q for %s at line %d: %w", record[j], headers[j], line, err)
			}
			values[i] = val
		}

		outcome, err := parseOutcome(record[labelCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		table.Records = append(table.Records, Record{Features: values, Outcome: outcome})
	}

	if table.Len() == 0 {
		return nil, errors.InvalidInput("dataset has a header but no records")
	}

	return table, nil
}

var (
	negative = decimal.Zero
	positive = decimal.NewFromInt(1)
)

// parseOutcome accepts any numeric spelling of 0 or 1, such as "1" or "1.0".
func parseOutcome(raw string) (int, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	switch {
	case err != nil:
		return 0, errors.InvalidInput("outcome must be 0 or 1, got %q", raw)
	case v.Equal(negative):
		return 0, nil
	case v.Equal(positive):
		return 1, nil
	}
	return 0, errors.InvalidInput("outcome must be 0 or 1, got %q", raw)
}

func missingColumns(have, want []string) []string {
	present := make(map[string]bool, len(have))
	for _, h := range have {
		present[h] = true
	}
	var missing []string
	for _, w := range want {
		if !present[w] {
			missing = append(missing, w)
		}
	}
	return missing
}
