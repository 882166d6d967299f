package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:           "oratriage",
		Short:         "Evidence-grounded Oracle error troubleshooting",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ./config.{json,yaml} if present)")

	root.AddCommand(
		serveCMD(&cfgPath),
		askCMD(&cfgPath),
		ingestCMD(&cfgPath),
		graphCMD(),
		tokenCMD(&cfgPath),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
