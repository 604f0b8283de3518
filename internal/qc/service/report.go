package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BandLabel 质量等级显示名，如 "Needs Improvement"
func BandLabel(band string) string {
	return cases.Title(language.English).String(band)
}

// ExportReport 导出质检报告 Excel
func (s *InspectionService) ExportReport(ctx context.Context, workspaceID, id string) (*excelize.File, string, error) {
	detail, err := s.GetInspection(ctx, workspaceID, id)
	if err != nil {
		return nil, "", err
	}
	inspection := detail.Inspection
	ev := evaluationOf(inspection, aggregatorFor(inspection))

	f := excelize.NewFile()
	summary := "Summary"
	f.SetSheetName("Sheet1", summary)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	status := inspection.Status
	if status == "" || inspection.CompletedAt == nil {
		status = string(ev.Status) + " (provisional)"
	}
	rows := [][]interface{}{
		{"Inspection Number", inspection.InspectionNumber},
		{"Order", inspection.OrderID},
		{"Production Method", inspection.ProductionMethod},
		{"Inspection Type", inspection.InspectionType},
		{"Inspection Level", inspection.InspectionLevel},
		{"Lot Size", inspection.LotSize},
		{"Sampling Range", inspection.SamplingRange},
		{"Sample Size", inspection.SampleSize},
		{"Accept / Reject", fmt.Sprintf("%d / %d", inspection.AcceptNumber, inspection.RejectNumber)},
		{"Total Good", inspection.TotalGood},
		{"Total Rejected", inspection.TotalRejected},
		{"Quality Rate (%)", inspection.QualityRate},
		{"Defect Rate (%)", inspection.DefectRate},
		{"Quality Band", BandLabel(ev.Band)},
		{"Result", status},
		{"Final Approval", inspection.FinalApproval},
		{"Review Required", ev.ReviewRequired},
	}
	for i, row := range rows {
		r := i + 1
		f.SetCellValue(summary, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", r), row[1])
		f.SetCellStyle(summary, fmt.Sprintf("A%d", r), fmt.Sprintf("A%d", r), boldStyle)
	}
	if inspection.SamplingFallback {
		f.SetCellValue(summary, fmt.Sprintf("C%d", 7), "lot size outside table")
	}
	f.SetColWidth(summary, "A", "A", 22)
	f.SetColWidth(summary, "B", "B", 28)

	defects := "Defects"
	f.NewSheet(defects)
	headers := []string{"Reason Code", "Description", "Severity", "Quantity", "Cost Attribution", "Cost Impact", "Location", "Notes", "Photo"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(defects, cell, h)
		f.SetCellStyle(defects, cell, cell, boldStyle)
	}
	for i, d := range inspection.Defects {
		r := i + 2
		values := []interface{}{
			d.ReasonCode, d.DisplayName, d.Severity, d.Quantity, d.CostAttribution,
			d.CostImpact.StringFixed(2), d.Location, d.Description, d.PhotoRef,
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(defects, fmt.Sprintf("%s%d", col, r), v)
		}
	}
	f.SetColWidth(defects, "A", "C", 18)
	f.SetColWidth(defects, "D", "F", 14)
	f.SetColWidth(defects, "G", "I", 24)

	severity := "Severity"
	f.NewSheet(severity)
	f.SetCellValue(severity, "A1", "Severity")
	f.SetCellValue(severity, "B1", "Quantity")
	f.SetCellStyle(severity, "A1", "B1", boldStyle)
	for i, sev := range quality.Severities {
		f.SetCellValue(severity, fmt.Sprintf("A%d", i+2), string(sev))
		f.SetCellValue(severity, fmt.Sprintf("B%d", i+2), detail.DefectsBySeverity[sev])
	}

	return f, fmt.Sprintf("%s.xlsx", inspection.InspectionNumber), nil
}
