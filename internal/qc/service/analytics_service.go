package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/quality"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/shared/cache"
	"go.uber.org/zap"
)

const (
	DefaultSummaryDays     = 30
	DefaultTrendWeeks      = 12
	DefaultPerformanceSize = 100
	MaxSummaryDays         = 366
	MaxTrendWeeks          = 104
	topDefectLimit         = 5
)

// AnalyticsService 质量统计服务
type AnalyticsService struct {
	repos  *repository.Repositories
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(repos *repository.Repositories, c cache.Cache, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repos: repos, cache: c, logger: logger, now: utcNow}
}

// QualitySummary 统计期质量概览
type QualitySummary struct {
	PeriodDays       int                      `json:"period_days"`
	TotalInspections int64                    `json:"total_inspections"`
	ByStatus         map[string]int64         `json:"by_status"`
	DefectRows       int64                    `json:"defect_rows"`
	DefectQuantity   int64                    `json:"defect_quantity"`
	FirstPassYield   float64                  `json:"first_pass_yield"`
	TopDefects       []repository.ReasonCount `json:"top_defects"`
	OpenCAPA         int64                    `json:"open_capa"`
}

// Summary 统计期内质检概览，一次通过率 = 通过数 / 总数
func (s *AnalyticsService) Summary(ctx context.Context, workspaceID string, days int) (*QualitySummary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}
	var out QualitySummary
	key := s.key(workspaceID, "summary", days)
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	since := s.now().AddDate(0, 0, -days)
	counts, err := s.repos.Analytics.CountByStatus(ctx, workspaceID, since)
	if err != nil {
		return nil, err
	}
	out = QualitySummary{PeriodDays: days, ByStatus: make(map[string]int64)}
	for _, c := range counts {
		out.ByStatus[c.Status] = c.Count
		out.TotalInspections += c.Count
	}
	if out.TotalInspections > 0 {
		passed := out.ByStatus[entity.InspectionStatusPassed]
		out.FirstPassYield = quality.Round2(float64(passed) / float64(out.TotalInspections) * 100)
	}

	if out.DefectRows, out.DefectQuantity, err = s.repos.Analytics.DefectTotals(ctx, workspaceID, since); err != nil {
		return nil, err
	}
	if out.TopDefects, err = s.repos.Analytics.TopReasonCodes(ctx, workspaceID, since, topDefectLimit); err != nil {
		return nil, err
	}
	if out.OpenCAPA, err = s.repos.CAPA.CountOpen(ctx, workspaceID); err != nil {
		return nil, err
	}

	s.store(ctx, key, &out)
	return &out, nil
}

// WeeklyTrend 周缺陷趋势
type WeeklyTrend struct {
	WeekStart  string `json:"week_start"`
	DefectRows int    `json:"defect_rows"`
	Quantity   int    `json:"quantity"`
}

// Trends 最近若干周的缺陷趋势，周一为一周起点（UTC），最多 MaxTrendWeeks 周
func (s *AnalyticsService) Trends(ctx context.Context, workspaceID string, weeks int) ([]WeeklyTrend, error) {
	if weeks <= 0 {
		weeks = DefaultTrendWeeks
	}
	if weeks > MaxTrendWeeks {
		weeks = MaxTrendWeeks
	}
	var out []WeeklyTrend
	key := s.key(workspaceID, "trends", weeks)
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	start := weekStart(s.now()).AddDate(0, 0, -7*(weeks-1))
	points, err := s.repos.Analytics.DefectPoints(ctx, workspaceID, start)
	if err != nil {
		return nil, err
	}
	out = make([]WeeklyTrend, weeks)
	for i := range out {
		out[i].WeekStart = start.AddDate(0, 0, 7*i).Format("2006-01-02")
	}
	for _, p := range points {
		idx := int(p.CreatedAt.UTC().Sub(start).Hours() / (24 * 7))
		if idx < 0 || idx >= weeks {
			continue
		}
		out[idx].DefectRows++
		out[idx].Quantity += p.Quantity
	}

	s.store(ctx, key, out)
	return out, nil
}

func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// InspectionPerformance 单次检验表现
type InspectionPerformance struct {
	ID               string   `json:"id"`
	InspectionNumber string   `json:"inspection_number"`
	ProductionMethod string   `json:"production_method"`
	Status           string   `json:"status"`
	QualityRate      float64  `json:"quality_rate"`
	TotalRejected    int      `json:"total_rejected"`
	DefectRows       int64    `json:"defect_rows"`
	DurationMinutes  *float64 `json:"duration_minutes,omitempty"`
}

// Performance 最近质检单的表现
func (s *AnalyticsService) Performance(ctx context.Context, workspaceID string, limit int) ([]InspectionPerformance, error) {
	if limit <= 0 || limit > DefaultPerformanceSize {
		limit = DefaultPerformanceSize
	}
	var out []InspectionPerformance
	key := s.key(workspaceID, "performance", limit)
	if s.cached(ctx, key, &out) {
		return out, nil
	}

	items, err := s.repos.Inspection.FindRecent(ctx, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	counts, err := s.repos.Analytics.DefectCountsByInspection(ctx, ids)
	if err != nil {
		return nil, err
	}

	out = make([]InspectionPerformance, 0, len(items))
	for _, item := range items {
		p := InspectionPerformance{
			ID:               item.ID,
			InspectionNumber: item.InspectionNumber,
			ProductionMethod: item.ProductionMethod,
			Status:           item.Status,
			QualityRate:      item.QualityRate,
			TotalRejected:    item.TotalRejected,
			DefectRows:       counts[item.ID],
		}
		if item.StartedAt != nil && item.CompletedAt != nil {
			d := quality.Round2(item.CompletedAt.Sub(*item.StartedAt).Minutes())
			p.DurationMinutes = &d
		}
		out = append(out, p)
	}

	s.store(ctx, key, out)
	return out, nil
}

// Invalidate 清除工作区的统计缓存
func (s *AnalyticsService) Invalidate(ctx context.Context, workspaceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, s.prefix(workspaceID)); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.String("workspace_id", workspaceID), zap.Error(err))
	}
}

func (s *AnalyticsService) prefix(workspaceID string) string {
	return "qc:analytics:" + workspaceID + ":"
}

func (s *AnalyticsService) key(workspaceID, name string, arg int) string {
	return fmt.Sprintf("%s%s:%d", s.prefix(workspaceID), name, arg)
}

func (s *AnalyticsService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := cache.GetJSON(ctx, s.cache, key, dst)
	if err != nil {
		s.logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *AnalyticsService) store(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, v); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}
