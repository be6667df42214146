package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/handler"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog v%s\n", handler.Version)
		},
	}
}
