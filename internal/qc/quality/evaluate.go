package quality

// Result 检验结论
type Result string

const (
	ResultPassed Result = "PASSED"
	ResultFailed Result = "FAILED"
)

// Quality bands, highest first.
const (
	BandExcellent        = "excellent"
	BandGood             = "good"
	BandAcceptable       = "acceptable"
	BandNeedsImprovement = "needs improvement"
)

// ReviewThreshold is the quality rate below which a final approval is flagged for review.
const ReviewThreshold = 95.0

// Evaluation 检验判定结果
type Evaluation struct {
	Status            Result           `json:"status"`
	Plan              SamplingPlan     `json:"sampling_plan"`
	DefectiveCount    int              `json:"defective_count"`
	Metrics           QualityMetrics   `json:"metrics"`
	Band              string           `json:"quality_band"`
	DefectsBySeverity map[Severity]int `json:"defects_by_severity"`
}

// Judge compares a defective count with the plan's accept number.
func Judge(plan SamplingPlan, defective int) Result {
	if defective <= plan.AcceptNumber {
		return ResultPassed
	}
	return ResultFailed
}

// Evaluate judges the inspection against the plan. The defective count is the recorded defect
// quantity, so under a zero acceptance table any recorded defect fails the lot.
func (a *Aggregator) Evaluate(plan SamplingPlan) Evaluation {
	m := a.Metrics()
	return Evaluation{
		Status:            Judge(plan, m.TotalRejected),
		Plan:              plan,
		DefectiveCount:    m.TotalRejected,
		Metrics:           m,
		Band:              QualityBand(m.QualityRate),
		DefectsBySeverity: a.DefectsBySeverity(),
	}
}

func QualityBand(rate float64) string {
	switch {
	case rate >= 98:
		return BandExcellent
	case rate >= 95:
		return BandGood
	case rate >= 90:
		return BandAcceptable
	}
	return BandNeedsImprovement
}

// ReviewRequired flags an approved inspection whose quality rate is under the threshold.
// Approval itself is never blocked.
func ReviewRequired(finalApproval bool, rate float64) bool {
	return finalApproval && rate < ReviewThreshold
}
