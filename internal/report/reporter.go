package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"pimaknn/internal/data"
	"pimaknn/internal/evaluation"
)

const barWidth = 40

// Reporter prints pipeline results as plain text with terminal charts.
type Reporter struct {
	w      io.Writer
	charts bool

	green  func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	blue   func(a ...any) string
}

func NewReporter(w io.Writer, charts bool) *Reporter {
	return &Reporter{
		w:      w,
		charts: charts,
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan, color.Bold).SprintFunc(),
		blue:   color.New(color.FgBlue).SprintFunc(),
	}
}

func (r *Reporter) heading(title string) {
	fmt.Fprintf(r.w, "\n%s\n", r.cyan(title))
}

// DatasetInfo prints the shape, per-label counts and a per-feature summary.
func (r *Reporter) DatasetInfo(title string, ds *data.DatasetStats) {
	r.heading(title)
	fmt.Fprintf(r.w, "dimension of diabetes data: (%d, %d)\n", ds.Rows, ds.Cols)
	fmt.Fprintln(r.w, "Outcome")
	for _, class := range ds.Classes {
		fmt.Fprintf(r.w, "%-7d %d\n", class, ds.ClassDistribution[class])
	}

	table := r.newTable([]string{"feature", "count", "zeros", "mean", "std", "min", "50%", "max"})
	for _, f := range ds.Features {
		table.Append([]string{
			f.Name,
			strconv.Itoa(f.Count),
			strconv.Itoa(f.Zeros),
			ff(f.Mean), ff(f.Std), ff(f.Min), ff(f.Median), ff(f.Max),
		})
	}
	table.Render()
}

// CountPlot renders the label distribution as horizontal bars.
func (r *Reporter) CountPlot(counts map[int]int) {
	if !r.charts {
		return
	}
	r.heading("Distribution of Outcome")

	classes := make([]int, 0, len(counts))
	max := 0
	for class, count := range counts {
		classes = append(classes, class)
		if count > max {
			max = count
		}
	}
	sort.Ints(classes)

	for _, class := range classes {
		n := 0
		if max > 0 {
			n = counts[class] * barWidth / max
		}
		fmt.Fprintf(r.w, "%3d | %s %d\n", class, r.blue(strings.Repeat("█", n)), counts[class])
	}
}

// Sweep prints the per-k holdout accuracies and, with charts on, both
// accuracy series on one chart with the neighbour counts along the x axis.
func (r *Reporter) Sweep(results []evaluation.SweepResult) {
	r.heading("KNN accuracy for different number of neighbors")

	table := r.newTable([]string{"n_neighbors", "training accuracy", "test accuracy"})
	for _, res := range results {
		table.Append([]string{
			strconv.Itoa(res.Neighbors),
			ff(res.TrainAccuracy),
			ff(res.TestAccuracy),
		})
	}
	table.Render()

	if best, ok := evaluation.BestSweep(results); ok {
		fmt.Fprintf(r.w, "best holdout n_neighbors: %s (test accuracy %.4f)\n", r.green(best.Neighbors), best.TestAccuracy)
	}

	if !r.charts || len(results) < 2 {
		return
	}

	train := make([]float64, len(results))
	test := make([]float64, len(results))
	for i, res := range results {
		train[i] = res.TrainAccuracy
		test[i] = res.TestAccuracy
	}

	chart := asciigraph.PlotMany([][]float64{train, test},
		asciigraph.Height(10),
		asciigraph.Width(tickStep*(len(results)-1)+1),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("training accuracy", "test accuracy"),
	)

	lines := strings.SplitN(chart, "\n", 2)
	origin := plotOrigin(lines[0])

	plot := chart
	legend := ""
	if i := strings.LastIndex(chart, "\n\n"); i >= 0 {
		plot, legend = chart[:i], strings.TrimLeft(chart[i:], "\n")
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, plot)
	fmt.Fprintln(r.w, neighborTicks(results, origin))
	fmt.Fprintf(r.w, "%s%s\n", strings.Repeat(" ", origin), r.blue("n_neighbors"))
	fmt.Fprintln(r.w, legend)
}

// tickStep is the number of chart columns between two neighbour counts.
const tickStep = 4

// plotOrigin returns the column of the y axis in a chart line. The first
// data point is drawn on the axis itself.
func plotOrigin(line string) int {
	col := 0
	for _, c := range line {
		if c == '┤' || c == '┼' {
			return col
		}
		col++
	}
	return 0
}

func neighborTicks(results []evaluation.SweepResult, origin int) string {
	row := []rune(strings.Repeat(" ", origin+tickStep*len(results)+2))
	for i, res := range results {
		copy(row[origin+i*tickStep:], []rune(strconv.Itoa(res.Neighbors)))
	}
	return strings.TrimRight(string(row), " ")
}

// Holdout prints the accuracy of the chosen model on the holdout split.
func (r *Reporter) Holdout(res evaluation.SweepResult, report *evaluation.ClassificationMetrics) {
	r.heading(fmt.Sprintf("Holdout evaluation (n_neighbors=%d)", res.Neighbors))
	fmt.Fprintf(r.w, "Accuracy of K-NN classifier on training set: %.2f\n", res.TrainAccuracy)
	fmt.Fprintf(r.w, "Accuracy of K-NN classifier on test set: %.2f\n", res.TestAccuracy)
	r.ClassificationReport(report)
}

func (r *Reporter) GridSearch(result *evaluation.GridSearchResult) {
	r.heading("Grid search")

	table := r.newTable([]string{"n_neighbors", "mean accuracy", "std"})
	for _, s := range result.Scores {
		k := strconv.Itoa(s.Neighbors)
		if s.Neighbors == result.BestNeighbors {
			k += " *"
		}
		table.Append([]string{k, ff(s.Mean), ff(s.Std)})
	}
	table.Render()

	fmt.Fprintf(r.w, "Best Parameters:  {'n_neighbors': %s}\n", r.green(result.BestNeighbors))
}

// Folds prints accuracy and a classification report for every fold.
func (r *Reporter) Folds(eval *evaluation.FoldEvaluation) {
	r.heading(fmt.Sprintf("Stratified %d-fold evaluation (n_neighbors=%d)", len(eval.Folds), eval.Neighbors))
	for i, fold := range eval.Folds {
		fmt.Fprintf(r.w, "\n%s %d\n", r.yellow("Fold"), fold.Fold+1)
		fmt.Fprintf(r.w, "Accuracy: %v\n", fold.Accuracy)
		fmt.Fprintln(r.w, "Classification Report:")
		r.ClassificationReport(eval.Reports[i])
	}
	fmt.Fprintf(r.w, "\nCV accuracy: %.4f ± %.4f\n", eval.Mean, eval.Std)
}

// ClassificationReport prints precision, recall, f1-score and support per
// label, followed by balanced accuracy and per-label specificity.
func (r *Reporter) ClassificationReport(m *evaluation.ClassificationMetrics) {
	if m == nil {
		fmt.Fprintln(r.w, "no predictions")
		return
	}

	table := r.newTable([]string{"", "precision", "recall", "f1-score", "support"})
	for _, class := range m.Classes {
		c := m.PerClassMetrics[class]
		table.Append([]string{strconv.Itoa(class), f2(c.Precision), f2(c.Recall), f2(c.F1Score), strconv.Itoa(c.Support)})
	}
	n := strconv.Itoa(m.NumSamples)
	table.Append([]string{"accuracy", "", "", f2(m.Accuracy), n})
	table.Append([]string{"macro avg", f2(m.MacroPrecision), f2(m.MacroRecall), f2(m.MacroF1), n})
	table.Append([]string{"weighted avg", f2(m.WeightedPrecision), f2(m.WeightedRecall), f2(m.WeightedF1), n})
	table.Render()

	specificity := make([]string, len(m.Classes))
	for i, class := range m.Classes {
		specificity[i] = fmt.Sprintf("%d=%s", class, f2(m.PerClassMetrics[class].Specificity))
	}
	fmt.Fprintf(r.w, "balanced accuracy: %s\n", f2(m.BalancedAccuracy))
	fmt.Fprintf(r.w, "specificity: %s\n", strings.Join(specificity, " "))
}

func (r *Reporter) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	return table
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func f2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
