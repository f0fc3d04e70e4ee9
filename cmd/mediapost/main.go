package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mediapost",
		Short:        "mediapost client and development backend",
		SilenceUsage: true,
	}

	root.AddCommand(
		newConsoleCmd(),
		newBackendCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
