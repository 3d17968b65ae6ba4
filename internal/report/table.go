package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteTable writes the comparison table in the classic fixed-width style,
// with the theoretical line first:
//
//	Distribution mean +- stddev:
//	Theoretical                  :  0.000 +- 1.000
//	Worker-local generators (MT) : -0.000 +- 1.000
func WriteTable(w io.Writer, mean, stddev float64, summaries ...Summary) error {
	if _, err := fmt.Fprintln(w, "Distribution mean +- stddev:"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-28s : %6.3f +- %5.3f\n", "Theoretical", mean, stddev); err != nil {
		return err
	}
	for _, s := range summaries {
		label := s.Label
		if label == "" {
			label = s.Sampler
		}
		if _, err := fmt.Fprintf(w, "%-28s : %6.3f +- %5.3f\n", label, s.Mean, s.StdDev); err != nil {
			return err
		}
	}
	return nil
}

// WriteDetails writes every field of a single summary, one per line.
func WriteDetails(w io.Writer, s Summary) error {
	lines := []string{
		fmt.Sprintf("run      : %s", s.RunID),
		fmt.Sprintf("sampler  : %s", s.Sampler),
		fmt.Sprintf("entries  : %d", s.Entries),
		fmt.Sprintf("workers  : %d", s.Workers),
		fmt.Sprintf("mean     : %.6f", s.Mean),
		fmt.Sprintf("stddev   : %.6f", s.StdDev),
	}
	if s.Captured {
		lines = append(lines,
			fmt.Sprintf("min      : %.6f", s.Min),
			fmt.Sprintf("max      : %.6f", s.Max),
			fmt.Sprintf("median   : %.6f", s.Median),
		)
	}
	lines = append(lines,
		fmt.Sprintf("z-score  : %.3f (p=%.4f)", s.ZScore, s.PValue),
		fmt.Sprintf("elapsed  : %s", s.Elapsed),
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the summaries as an indented JSON array.
func WriteJSON(w io.Writer, summaries ...Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
