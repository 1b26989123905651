package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "floem-bench",
		Short: "Workload harness for the keyed reconciliation engine",
		Long: `floem-bench drives the reconciliation engine with synthetic
keyed collections.

  run    executes a churn workload and prints engine counters
  serve  runs the workload continuously, exposing Prometheus metrics
         and a WebSocket feed of structural changes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("floem-bench %s (%s)\n", version, commit)
		},
	}
}
