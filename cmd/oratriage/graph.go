package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/oratriage/internal/agent/core"
)

func graphCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the troubleshooting state machine as a Mermaid flowchart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), core.RenderGraph())
			return err
		},
	}
}
