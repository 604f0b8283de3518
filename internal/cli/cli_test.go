package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAQLCmd(t *testing.T) {
	out, err := run(t, AQLCmd(), "100", "--level", "III")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Range:       91-150") || !strings.Contains(out, "Sample size: 50") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, AQLCmd(), "5000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Sample size: 200") || !strings.Contains(out, "warning") {
		t.Errorf("expected fallback warning:\n%s", out)
	}

	if _, err := run(t, AQLCmd(), "abc"); err == nil {
		t.Error("expected error for non-numeric lot size")
	}
}

func TestDefectsClassifyCmd(t *testing.T) {
	out, err := run(t, DefectsCmd(), "classify", "silkscreen", "UNDER_CURE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "CRITICAL") || strings.Contains(out, "unknown") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _ = run(t, DefectsCmd(), "classify", "DTF", "WEIRD")
	if !strings.Contains(out, "MINOR") || !strings.Contains(out, "unknown code") {
		t.Errorf("unknown code should be MINOR:\n%s", out)
	}
}

func TestEvaluateCmd(t *testing.T) {
	out, err := run(t, EvaluateCmd(), "--method", "DTF", "--lot", "500", "--good", "97", "--defect", "FILM_TEAR=2", "-d", "INK_SMUDGE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Result:       FAILED") || !strings.Contains(out, "Quality rate: 97.00%") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, EvaluateCmd(), "--method", "DTF", "--lot", "500", "--good", "80")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Result:       PASSED") {
		t.Errorf("expected PASSED:\n%s", out)
	}

	if _, err := run(t, EvaluateCmd(), "--method", "DTF", "--lot", "10", "-d", "FILM_TEAR=x"); err == nil {
		t.Error("expected error for bad quantity")
	}
}

func TestNumberCmd(t *testing.T) {
	out, err := run(t, NumberCmd(), "next", "QC-2026-000041", "--year", "2026")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "QC-2026-000042" {
		t.Errorf("got %q", out)
	}

	out, _ = run(t, NumberCmd(), "format", "--prefix", "capa", "--year", "2025", "--seq", "7")
	if strings.TrimSpace(out) != "CAPA-2025-000007" {
		t.Errorf("got %q", out)
	}
}
