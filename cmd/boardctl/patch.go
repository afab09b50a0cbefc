package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/andrewthecodertx/board-core/pkg/patch"
)

func newPatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patch <base> <ips> <out>",
		Short: "Apply an IPS patch to a base image, writing the result to out",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ips, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			patched, err := patch.Apply(base, ips)
			if err != nil {
				return err
			}
			return os.WriteFile(args[2], patched, 0o644)
		},
	}
}
