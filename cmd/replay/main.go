// Command replay runs a recorded telemetry fixture through the full
// feedback pipeline and reports per-frame outcomes. Exits non-zero when the
// fixture's expected outcomes don't hold, so fixtures double as regression
// checks.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handslab/signcoach/internal/replay"
)

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:           "replay <fixture.json>",
		Short:         "Replay a recorded feedback session fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], verbose)
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every frame")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, verbose bool) error {
	fix, err := replay.LoadFixture(path)
	if err != nil {
		return err
	}

	results, err := replay.Replay(fix)
	if err != nil {
		return err
	}
	summary := replay.Summarize(fix, results)

	if verbose {
		for _, r := range results {
			msgs := strings.Join(r.Messages, " | ")
			fmt.Printf("frame %3d  t=%5dms  state=%-14s phase=%-15s overlay=%-5v %s\n",
				r.Index, r.AtMs, r.State, r.Phase, r.Overlay, msgs)
		}
		fmt.Println()
	}

	fmt.Printf("frames: %d  analyses: %d  message changes: %d  phase changes: %d\n",
		summary.Frames, summary.Analyses, summary.MessageChanges, summary.PhaseChanges)
	fmt.Printf("attempts won: %d  lost: %d  final: %s / %s\n",
		summary.AttemptsWon, summary.AttemptsLost, summary.FinalState, summary.FinalPhase)

	if len(summary.Mismatches) > 0 {
		for _, m := range summary.Mismatches {
			fmt.Printf("MISMATCH frame %d %s: want %s, got %s\n", m.Frame, m.Field, m.Want, m.Got)
		}
		return fmt.Errorf("%d expectation(s) failed", len(summary.Mismatches))
	}
	if len(fix.Expected) > 0 {
		fmt.Printf("all %d expectations passed\n", len(fix.Expected))
	}
	return nil
}
