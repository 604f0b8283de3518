package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
)

// AQLCmd returns the aql command
func AQLCmd() *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "aql <lot-size>",
		Short: "Resolve the AQL sampling plan for a lot",
		Long: `Look up the zero acceptance sampling plan for a lot size.
Lot sizes outside 2-3200 fall back to the largest range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lot, err := strconv.Atoi(args[0])
			if err != nil || lot < 1 {
				return fmt.Errorf("invalid lot size %q", args[0])
			}
			lvl, err := quality.ParseInspectionLevel(level)
			if err != nil {
				return err
			}
			plan := quality.ResolveSamplingPlan(lvl, lot)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lot size:    %d\n", lot)
			fmt.Fprintf(out, "Level:       %s\n", plan.Level)
			fmt.Fprintf(out, "Range:       %s\n", plan.Range)
			fmt.Fprintf(out, "Sample size: %d\n", plan.SampleSize)
			fmt.Fprintf(out, "Accept/Reject: %d/%d\n", plan.AcceptNumber, plan.RejectNumber)
			if plan.Fallback {
				fmt.Fprintln(out, color.New(color.FgYellow).Sprint("warning: lot size outside table, largest range used"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", string(quality.DefaultLevel), "Inspection level (I, II, III)")
	cmd.AddCommand(aqlTableCmd())

	return cmd
}

func aqlTableCmd() *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the sampling table for a level",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := quality.ParseInspectionLevel(level)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", "LOT", "SAMPLE")
			for _, r := range quality.LotRanges() {
				plan, _ := quality.LookupSamplingPlan(lvl, r.Min)
				fmt.Fprintf(out, "%-12s %d\n", plan.Range, plan.SampleSize)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", string(quality.DefaultLevel), "Inspection level (I, II, III)")
	return cmd
}
