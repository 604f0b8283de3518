package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-qc/internal/cli"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "qcctl",
		Short:   "Offline quality control toolkit",
		Version: Version,
		Long: `qcctl resolves AQL sampling plans, browses defect catalogs,
evaluates inspections and formats document numbers without a running server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.AQLCmd())
	rootCmd.AddCommand(cli.DefectsCmd())
	rootCmd.AddCommand(cli.EvaluateCmd())
	rootCmd.AddCommand(cli.NumberCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
