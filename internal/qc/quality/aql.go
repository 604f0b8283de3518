package quality

import (
	"fmt"
	"strings"
)

// InspectionLevel ANSI/ASQ Z1.4 一般检验水平
type InspectionLevel string

const (
	LevelI   InspectionLevel = "I"
	LevelII  InspectionLevel = "II"
	LevelIII InspectionLevel = "III"

	DefaultLevel = LevelII
)

// ParseInspectionLevel accepts "I"/"II"/"III" and the "GENERAL_" prefixed forms.
func ParseInspectionLevel(s string) (InspectionLevel, error) {
	v := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "GENERAL_")
	switch InspectionLevel(v) {
	case LevelI, LevelII, LevelIII:
		return InspectionLevel(v), nil
	case "":
		return DefaultLevel, nil
	}
	return "", &ValidationError{Field: "inspection_level", Message: fmt.Sprintf("unknown inspection level %q", s)}
}

func (l InspectionLevel) index() (int, bool) {
	switch l {
	case LevelI:
		return 0, true
	case LevelII:
		return 1, true
	case LevelIII:
		return 2, true
	}
	return 0, false
}

// LotRange 批量区间（含两端）
type LotRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r LotRange) Contains(lotSize int) bool {
	return lotSize >= r.Min && lotSize <= r.Max
}

func (r LotRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// SamplingPlan 抽样方案
type SamplingPlan struct {
	Level        InspectionLevel `json:"inspection_level"`
	Range        string          `json:"range"`
	SampleSize   int             `json:"sample_size"`
	AcceptNumber int             `json:"accept_number"`
	RejectNumber int             `json:"reject_number"`
	// Fallback is set when the lot size fell outside every range and the last row was used.
	Fallback bool `json:"fallback"`
}

type aqlRow struct {
	lots   LotRange
	sample [3]int // by level I, II, III
}

// Zero acceptance number table: every cell accepts 0 and rejects at 1.
var aqlTable = [...]aqlRow{
	{LotRange{2, 8}, [3]int{2, 3, 5}},
	{LotRange{9, 15}, [3]int{3, 5, 8}},
	{LotRange{16, 25}, [3]int{5, 8, 13}},
	{LotRange{26, 50}, [3]int{8, 13, 20}},
	{LotRange{51, 90}, [3]int{13, 20, 32}},
	{LotRange{91, 150}, [3]int{20, 32, 50}},
	{LotRange{151, 280}, [3]int{32, 50, 80}},
	{LotRange{281, 500}, [3]int{50, 80, 125}},
	{LotRange{501, 1200}, [3]int{80, 125, 200}},
	{LotRange{1201, 3200}, [3]int{125, 200, 315}},
}

const (
	aqlAccept = 0
	aqlReject = 1
)

// LotRanges returns the table's lot-size ranges in ascending order.
func LotRanges() []LotRange {
	out := make([]LotRange, len(aqlTable))
	for i, row := range aqlTable {
		out[i] = row.lots
	}
	return out
}

func (row aqlRow) plan(level InspectionLevel) SamplingPlan {
	idx, ok := level.index()
	if !ok {
		level = DefaultLevel
		idx, _ = level.index()
	}
	return SamplingPlan{
		Level:        level,
		Range:        row.lots.String(),
		SampleSize:   row.sample[idx],
		AcceptNumber: aqlAccept,
		RejectNumber: aqlReject,
	}
}

// LookupSamplingPlan finds the row whose range contains lotSize. The bool is false when no
// range matches; callers decide what to fall back to.
func LookupSamplingPlan(level InspectionLevel, lotSize int) (SamplingPlan, bool) {
	for _, row := range aqlTable {
		if row.lots.Contains(lotSize) {
			return row.plan(level), true
		}
	}
	return SamplingPlan{}, false
}

// ResolveSamplingPlan never fails: lot sizes outside the table use the largest range.
func ResolveSamplingPlan(level InspectionLevel, lotSize int) SamplingPlan {
	if plan, ok := LookupSamplingPlan(level, lotSize); ok {
		return plan
	}
	plan := aqlTable[len(aqlTable)-1].plan(level)
	plan.Fallback = true
	return plan
}
