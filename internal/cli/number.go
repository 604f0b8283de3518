package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
)

// NumberCmd returns the number command
func NumberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "number",
		Short: "Inspection and CAPA number helpers",
	}
	cmd.AddCommand(numberNextCmd())
	cmd.AddCommand(numberFormatCmd())
	return cmd
}

func numberNextCmd() *cobra.Command {
	var prefix string
	var year int

	cmd := &cobra.Command{
		Use:   "next [latest]",
		Short: "Print the number following the latest issued one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latest := ""
			if len(args) == 1 {
				latest = args[0]
			}
			seq, err := quality.NextSequence(latest)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), quality.FormatNumber(strings.ToUpper(prefix), year, seq))
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", quality.InspectionPrefix, "Number prefix (QC or CAPA)")
	cmd.Flags().IntVar(&year, "year", time.Now().UTC().Year(), "Numbering year")
	return cmd
}

func numberFormatCmd() *cobra.Command {
	var prefix string
	var year, seq int

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format a sequence as a document number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seq < 1 {
				return fmt.Errorf("--seq must be at least 1")
			}
			fmt.Fprintln(cmd.OutOrStdout(), quality.FormatNumber(strings.ToUpper(prefix), year, seq))
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", quality.InspectionPrefix, "Number prefix (QC or CAPA)")
	cmd.Flags().IntVar(&year, "year", time.Now().UTC().Year(), "Numbering year")
	cmd.Flags().IntVar(&seq, "seq", 0, "Sequence number")
	return cmd
}
