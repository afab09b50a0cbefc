package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/andrewthecodertx/board-core/pkg/patch"
)

func newIPSCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ips-create <base> <modified> <out>",
		Short: "Diff base against modified and write an IPS patch covering the differences",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			modified, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			ranges := diffRanges(base, modified)
			out := patch.Create(modified, ranges)
			return os.WriteFile(args[2], out, 0o644)
		},
	}
}

// diffRanges collapses byte-level differences between base and modified
// into contiguous (offset, length) runs, the same granularity
// Board.RecordModifiedRange tracks for the Flash-ROM journal.
func diffRanges(base, modified []byte) []patch.Range {
	var ranges []patch.Range
	inRun := false
	start := 0
	n := len(modified)
	for i := 0; i < n; i++ {
		var baseByte byte
		if i < len(base) {
			baseByte = base[i]
		}
		differs := i >= len(base) || modified[i] != baseByte
		if differs && !inRun {
			inRun = true
			start = i
		} else if !differs && inRun {
			inRun = false
			ranges = append(ranges, patch.Range{Offset: start, Length: i - start})
		}
	}
	if inRun {
		ranges = append(ranges, patch.Range{Offset: start, Length: n - start})
	}
	return ranges
}
