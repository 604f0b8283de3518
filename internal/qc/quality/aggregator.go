package quality

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefectRecord 单条缺陷记录
type DefectRecord struct {
	ID              string          `json:"id"`
	ReasonCode      string          `json:"reason_code"`
	Quantity        int             `json:"quantity"`
	CostAttribution CostAttribution `json:"cost_attribution"`
	CostImpact      decimal.Decimal `json:"cost_impact"`
	Location        string          `json:"location,omitempty"`
	Description     string          `json:"description,omitempty"`
	PhotoRef        string          `json:"photo_ref,omitempty"`
}

// DefectInput 新增缺陷参数
type DefectInput struct {
	ReasonCode      string
	Quantity        int
	CostAttribution CostAttribution
	CostImpact      decimal.Decimal
	Location        string
	Description     string
	PhotoRef        string
}

// DefectPatch 缺陷字段更新，nil 字段保持不变
type DefectPatch struct {
	ReasonCode      *string
	Quantity        *int
	CostAttribution *CostAttribution
	CostImpact      *decimal.Decimal
	Location        *string
	Description     *string
	PhotoRef        *string
}

// QualityMetrics 质量指标
type QualityMetrics struct {
	TotalGood      int     `json:"total_good"`
	TotalRejected  int     `json:"total_rejected"`
	TotalProduced  int     `json:"total_produced"`
	QualityRate    float64 `json:"quality_rate"`
	DefectRate     float64 `json:"defect_rate"`
	FirstPassYield float64 `json:"first_pass_yield"`
}

// ComputeMetrics derives the metrics from the good count and the current defect set.
func ComputeMetrics(totalGood int, defects []DefectRecord) QualityMetrics {
	rejected := 0
	for _, d := range defects {
		rejected += d.Quantity
	}
	m := QualityMetrics{
		TotalGood:     totalGood,
		TotalRejected: rejected,
		TotalProduced: totalGood + rejected,
		QualityRate:   100,
		DefectRate:    0,
	}
	if m.TotalProduced > 0 {
		m.QualityRate = Round2(float64(totalGood) / float64(m.TotalProduced) * 100)
		m.DefectRate = Round2(float64(rejected) / float64(m.TotalProduced) * 100)
	}
	// no separate rework tracking yet
	m.FirstPassYield = m.QualityRate
	return m
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Aggregator keeps the defect set of one inspection and its derived metrics.
// It is not safe for concurrent use; callers serialise per inspection.
type Aggregator struct {
	method    ProductionMethod
	totalGood int
	defects   []DefectRecord
	metrics   QualityMetrics

	// NewID generates defect identifiers.
	NewID func() string
}

func NewAggregator(method ProductionMethod, totalGood int, defects []DefectRecord) *Aggregator {
	a := &Aggregator{
		method:    method,
		totalGood: totalGood,
		defects:   append([]DefectRecord(nil), defects...),
		NewID:     func() string { return uuid.New().String()[:32] },
	}
	a.Recompute()
	return a
}

func (a *Aggregator) Method() ProductionMethod { return a.method }

func (a *Aggregator) TotalGood() int { return a.totalGood }

// Defects returns a copy of the current defect set.
func (a *Aggregator) Defects() []DefectRecord {
	return append([]DefectRecord(nil), a.defects...)
}

func (a *Aggregator) Metrics() QualityMetrics { return a.metrics }

func (a *Aggregator) Recompute() QualityMetrics {
	a.metrics = ComputeMetrics(a.totalGood, a.defects)
	return a.metrics
}

func (a *Aggregator) SetTotalGood(n int) error {
	if n < 0 {
		return &ValidationError{Field: "total_good", Message: "must not be negative"}
	}
	a.totalGood = n
	a.Recompute()
	return nil
}

func validateReasonCode(code string) error {
	if code == "" {
		return &ValidationError{Field: "reason_code", Message: "is required"}
	}
	return nil
}

func validateQuantity(q int) error {
	if q < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	return nil
}

func validateCostImpact(d decimal.Decimal) error {
	if d.IsNegative() {
		return &ValidationError{Field: "cost_impact", Message: "must not be negative"}
	}
	return nil
}

// AddDefect appends a defect. Nothing is added when validation fails.
func (a *Aggregator) AddDefect(in DefectInput) (DefectRecord, error) {
	if err := validateReasonCode(in.ReasonCode); err != nil {
		return DefectRecord{}, err
	}
	if err := validateQuantity(in.Quantity); err != nil {
		return DefectRecord{}, err
	}
	if err := validateCostImpact(in.CostImpact); err != nil {
		return DefectRecord{}, err
	}
	attribution, err := ParseCostAttribution(string(in.CostAttribution))
	if err != nil {
		return DefectRecord{}, err
	}

	rec := DefectRecord{
		ID:              a.NewID(),
		ReasonCode:      in.ReasonCode,
		Quantity:        in.Quantity,
		CostAttribution: attribution,
		CostImpact:      in.CostImpact,
		Location:        in.Location,
		Description:     in.Description,
		PhotoRef:        in.PhotoRef,
	}
	a.defects = append(a.defects, rec)
	a.Recompute()
	return rec, nil
}

func (a *Aggregator) indexOf(id string) int {
	for i := range a.defects {
		if a.defects[i].ID == id {
			return i
		}
	}
	return -1
}

func (a *Aggregator) RemoveDefect(id string) error {
	i := a.indexOf(id)
	if i < 0 {
		return ErrDefectNotFound
	}
	a.defects = append(a.defects[:i], a.defects[i+1:]...)
	a.Recompute()
	return nil
}

// UpdateDefect applies the patch atomically: on a validation error the record is unchanged.
func (a *Aggregator) UpdateDefect(id string, p DefectPatch) (DefectRecord, error) {
	i := a.indexOf(id)
	if i < 0 {
		return DefectRecord{}, ErrDefectNotFound
	}
	rec := a.defects[i]

	if p.ReasonCode != nil {
		if err := validateReasonCode(*p.ReasonCode); err != nil {
			return DefectRecord{}, err
		}
		rec.ReasonCode = *p.ReasonCode
	}
	if p.Quantity != nil {
		if err := validateQuantity(*p.Quantity); err != nil {
			return DefectRecord{}, err
		}
		rec.Quantity = *p.Quantity
	}
	if p.CostAttribution != nil {
		attribution, err := ParseCostAttribution(string(*p.CostAttribution))
		if err != nil {
			return DefectRecord{}, err
		}
		rec.CostAttribution = attribution
	}
	if p.CostImpact != nil {
		if err := validateCostImpact(*p.CostImpact); err != nil {
			return DefectRecord{}, err
		}
		rec.CostImpact = *p.CostImpact
	}
	if p.Location != nil {
		rec.Location = *p.Location
	}
	if p.Description != nil {
		rec.Description = *p.Description
	}
	if p.PhotoRef != nil {
		rec.PhotoRef = *p.PhotoRef
	}

	a.defects[i] = rec
	a.Recompute()
	return rec, nil
}

// DefectsBySeverity sums defect quantity per severity tier. Reporting only.
func (a *Aggregator) DefectsBySeverity() map[Severity]int {
	out := make(map[Severity]int)
	for _, d := range a.defects {
		out[ClassifyDefect(a.method, d.ReasonCode).Severity] += d.Quantity
	}
	return out
}

// CostByAttribution sums cost impact per responsible party.
func (a *Aggregator) CostByAttribution() map[CostAttribution]decimal.Decimal {
	out := make(map[CostAttribution]decimal.Decimal)
	for _, d := range a.defects {
		out[d.CostAttribution] = out[d.CostAttribution].Add(d.CostImpact)
	}
	return out
}

// HasSeverity reports whether any defect classifies at the given tier.
func (a *Aggregator) HasSeverity(s Severity) bool {
	for _, d := range a.defects {
		if ClassifyDefect(a.method, d.ReasonCode).Severity == s {
			return true
		}
	}
	return false
}
