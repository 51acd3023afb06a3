package harness

import (
	"fmt"
	"io"

	"gauntlet/pkg/trial"
)

// writeList prints the tests selected by the name and kind filters, one
// `name: test` or `name: bench` line each. The ignore polarity is widened so
// ignored tests show up in a default listing, while --ignored narrows the
// listing to just them.
func writeList(w io.Writer, trials []*trial.Trial, args Arguments) error {
	listed, _ := trial.Filter(trials, trial.FilterOptions{
		Filters:        args.Filters,
		Skip:           args.Skip,
		Exact:          args.Exact,
		RunIgnored:     args.Ignored,
		IncludeIgnored: true,
		BenchOnly:      args.Bench,
		TestOnly:       args.Test,
	})
	for _, t := range listed {
		kind := "test"
		if t.Bench() {
			kind = "bench"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", t.Name(), kind); err != nil {
			return err
		}
	}
	return nil
}
