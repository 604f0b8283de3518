package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
)

// EvaluateCmd returns the evaluate command
func EvaluateCmd() *cobra.Command {
	var (
		method  string
		level   string
		lotSize int
		good    int
		defects []string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate an inspection offline",
		Long: `Compute quality metrics and the AQL verdict for a set of defects.

Example:
  qcctl evaluate --method DTF --lot 500 --good 78 --defect FILM_TEAR=2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := quality.ParseProductionMethod(method)
			if err != nil {
				return err
			}
			lvl, err := quality.ParseInspectionLevel(level)
			if err != nil {
				return err
			}
			if lotSize < 1 {
				return fmt.Errorf("--lot must be at least 1")
			}

			agg := quality.NewAggregator(m, 0, nil)
			if err := agg.SetTotalGood(good); err != nil {
				return err
			}
			for _, raw := range defects {
				in, err := parseDefectFlag(raw)
				if err != nil {
					return err
				}
				if _, err := agg.AddDefect(in); err != nil {
					return err
				}
			}

			ev := agg.Evaluate(quality.ResolveSamplingPlan(lvl, lotSize))
			printEvaluation(cmd, ev)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "Production method (required)")
	cmd.Flags().StringVarP(&level, "level", "l", string(quality.DefaultLevel), "Inspection level (I, II, III)")
	cmd.Flags().IntVar(&lotSize, "lot", 0, "Lot size (required)")
	cmd.Flags().IntVar(&good, "good", 0, "Units that passed")
	cmd.Flags().StringArrayVarP(&defects, "defect", "d", nil, "Defect as CODE=QTY, repeatable")
	cmd.MarkFlagRequired("method")
	cmd.MarkFlagRequired("lot")

	return cmd
}

// parseDefectFlag 解析 CODE=QTY，省略数量时为 1
func parseDefectFlag(s string) (quality.DefectInput, error) {
	code, qty, found := strings.Cut(s, "=")
	in := quality.DefectInput{ReasonCode: strings.ToUpper(strings.TrimSpace(code)), Quantity: 1}
	if found {
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return in, fmt.Errorf("invalid defect %q: quantity must be an integer", s)
		}
		in.Quantity = n
	}
	return in, nil
}

func printEvaluation(cmd *cobra.Command, ev quality.Evaluation) {
	out := cmd.OutOrStdout()
	verdict := color.New(color.FgGreen, color.Bold).Sprint(ev.Status)
	if ev.Status == quality.ResultFailed {
		verdict = color.New(color.FgRed, color.Bold).Sprint(ev.Status)
	}

	fmt.Fprintf(out, "Result:       %s\n", verdict)
	fmt.Fprintf(out, "Plan:         %s level %s, sample %d, Ac %d / Re %d\n",
		ev.Plan.Range, ev.Plan.Level, ev.Plan.SampleSize, ev.Plan.AcceptNumber, ev.Plan.RejectNumber)
	fmt.Fprintf(out, "Produced:     %d (good %d, rejected %d)\n",
		ev.Metrics.TotalProduced, ev.Metrics.TotalGood, ev.Metrics.TotalRejected)
	fmt.Fprintf(out, "Quality rate: %.2f%% (%s)\n", ev.Metrics.QualityRate, ev.Band)
	fmt.Fprintf(out, "Defect rate:  %.2f%%\n", ev.Metrics.DefectRate)
	for _, sev := range quality.Severities {
		if n := ev.DefectsBySeverity[sev]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", severityLabel(sev), n)
		}
	}
}
