package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
)

// DefectsCmd returns the defects command
func DefectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defects [method]",
		Short: "List defect catalogs",
		Long:  `List the defect catalog of one production method, or of all methods when omitted.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			methods := quality.Methods
			if len(args) == 1 {
				m, err := quality.ParseProductionMethod(args[0])
				if err != nil {
					return err
				}
				methods = []quality.ProductionMethod{m}
			}
			out := cmd.OutOrStdout()
			for _, m := range methods {
				fmt.Fprintln(out, color.New(color.Bold).Sprint(m))
				for _, dt := range quality.DefectTypes(m) {
					fmt.Fprintf(out, "  %-16s %-22s %s\n", dt.Code, dt.DisplayName, severityLabel(dt.Severity))
				}
			}
			return nil
		},
	}

	cmd.AddCommand(classifyCmd())
	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <method> <code>",
		Short: "Classify a reason code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := quality.ProductionMethod(args[0])
			if m, err := quality.ParseProductionMethod(args[0]); err == nil {
				method = m
			}
			dt := quality.ClassifyDefect(method, args[1])
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s)\n", dt.Code, severityLabel(dt.Severity), dt.DisplayName)
			if _, known := quality.LookupDefectType(method, args[1]); !known {
				fmt.Fprintln(out, color.New(color.FgYellow).Sprint("unknown code, treated as MINOR"))
			}
			return nil
		},
	}
}

func severityLabel(s quality.Severity) string {
	switch s {
	case quality.SeverityCritical:
		return color.New(color.FgRed).Sprint(s)
	case quality.SeverityMajor:
		return color.New(color.FgYellow).Sprint(s)
	}
	return color.New(color.FgCyan).Sprint(s)
}
