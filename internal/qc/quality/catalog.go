package quality

import (
	"fmt"
	"strings"
)

// ProductionMethod 生产工艺
type ProductionMethod string

const (
	MethodSilkscreen  ProductionMethod = "SILKSCREEN"
	MethodSublimation ProductionMethod = "SUBLIMATION"
	MethodDTF         ProductionMethod = "DTF"
	MethodEmbroidery  ProductionMethod = "EMBROIDERY"
)

// Methods lists the production methods that own a defect catalog.
var Methods = []ProductionMethod{MethodSilkscreen, MethodSublimation, MethodDTF, MethodEmbroidery}

func ParseProductionMethod(s string) (ProductionMethod, error) {
	m := ProductionMethod(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := catalogs[m]; ok {
		return m, nil
	}
	return "", &ValidationError{Field: "production_method", Message: fmt.Sprintf("unknown production method %q", s)}
}

// Severity 缺陷严重度
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
)

// Severities in descending order of impact.
var Severities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor}

// CostAttribution 缺陷成本归属
type CostAttribution string

const (
	AttributionSupplier CostAttribution = "SUPPLIER"
	AttributionStaff    CostAttribution = "STAFF"
	AttributionCompany  CostAttribution = "COMPANY"
	AttributionClient   CostAttribution = "CLIENT"

	DefaultAttribution = AttributionCompany
)

// ParseCostAttribution maps an empty value to COMPANY.
func ParseCostAttribution(s string) (CostAttribution, error) {
	a := CostAttribution(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case AttributionSupplier, AttributionStaff, AttributionCompany, AttributionClient:
		return a, nil
	case "":
		return DefaultAttribution, nil
	}
	return "", &ValidationError{Field: "cost_attribution", Message: fmt.Sprintf("unknown cost attribution %q", s)}
}

// DefectType 缺陷类型定义
type DefectType struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"display_name"`
	Severity    Severity `json:"severity"`
}

var catalogs = map[ProductionMethod][]DefectType{
	MethodSilkscreen: {
		{"MISALIGNMENT", "Misalignment", SeverityMajor},
		{"INK_BLEED", "Ink Bleeding", SeverityMinor},
		{"UNDER_CURE", "Under Cured", SeverityCritical},
		{"OVER_CURE", "Over Cured", SeverityMajor},
		{"PINHOLES", "Pin Holes", SeverityMinor},
		{"GHOSTING", "Ghost Image", SeverityMajor},
		{"INCOMPLETE", "Incomplete Print", SeverityCritical},
		{"COLOR_OFF", "Color Off", SeverityMajor},
	},
	MethodSublimation: {
		{"COLOR_SHIFT", "Color Shift", SeverityMajor},
		{"GHOSTING", "Ghost Lines", SeverityMinor},
		{"POOR_TRANSFER", "Poor Transfer", SeverityCritical},
		{"BLURRY", "Blurry Image", SeverityMajor},
		{"INCOMPLETE", "Incomplete Transfer", SeverityCritical},
		{"FADE_UNEVEN", "Uneven Fade", SeverityMinor},
		{"REGISTRATION", "Registration Off", SeverityMajor},
	},
	MethodDTF: {
		{"POOR_ADHESION", "Poor Adhesion", SeverityCritical},
		{"POWDER_CLUMPS", "Powder Clumps", SeverityMinor},
		{"FILM_TEAR", "Film Tear", SeverityMajor},
		{"INK_SMUDGE", "Ink Smudge", SeverityMinor},
		{"INCOMPLETE", "Incomplete Print", SeverityCritical},
		{"EDGE_LIFT", "Edge Lifting", SeverityMajor},
		{"COLOR_OFF", "Color Mismatch", SeverityMajor},
	},
	MethodEmbroidery: {
		{"THREAD_BREAK", "Thread Break", SeverityMinor},
		{"PUCKERING", "Fabric Puckering", SeverityMajor},
		{"REGISTRATION", "Poor Registration", SeverityMajor},
		{"LOOSE_STITCHES", "Loose Stitches", SeverityMinor},
		{"SKIP_STITCHES", "Skip Stitches", SeverityMajor},
		{"WRONG_COLOR", "Wrong Thread Color", SeverityCritical},
		{"INCOMPLETE", "Incomplete Design", SeverityCritical},
		{"TENSION_OFF", "Thread Tension Off", SeverityMinor},
	},
}

// DefectTypes returns a copy of the method's catalog, empty for unknown methods.
func DefectTypes(method ProductionMethod) []DefectType {
	list := catalogs[method]
	out := make([]DefectType, len(list))
	copy(out, list)
	return out
}

// LookupDefectType reports whether code is part of the method's catalog.
func LookupDefectType(method ProductionMethod, code string) (DefectType, bool) {
	for _, dt := range catalogs[method] {
		if dt.Code == code {
			return dt, true
		}
	}
	return DefectType{}, false
}

// ClassifyDefect resolves a reason code, degrading to MINOR with the raw code as display name.
func ClassifyDefect(method ProductionMethod, code string) DefectType {
	if dt, ok := LookupDefectType(method, code); ok {
		return dt
	}
	return DefectType{Code: code, DisplayName: code, Severity: SeverityMinor}
}
