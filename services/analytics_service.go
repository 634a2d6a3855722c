package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// DashboardStats is the headline numbers for the landing dashboard
type DashboardStats struct {
	TotalConverts      int64    `json:"total_converts"`
	NewThisMonth       int64    `json:"new_this_month"`
	ActiveFollowups    int64    `json:"active_followups"`
	Established        int64    `json:"established"`
	OpenAlerts         int64    `json:"open_alerts"`
	ScheduledCalls     int64    `json:"scheduled_calls"`
	AverageHealthScore *float64 `json:"average_health_score"`
}

// StageCount is one slice of the stage distribution
type StageCount struct {
	Stage models.ConvertStage `json:"stage"`
	Label string              `json:"label"`
	Count int64               `json:"count"`
}

// SourceCount is one slice of the source breakdown
type SourceCount struct {
	Source models.ConvertSource `json:"source"`
	Count  int64                `json:"count"`
}

// MonthCount is one month of registrations
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

// HealthBucket is one band of the health score histogram
type HealthBucket struct {
	Bucket string `json:"bucket"`
	Count  int64  `json:"count"`
}

// ConvertAnalytics is the convert breakdown report
type ConvertAnalytics struct {
	ByStage       []StageCount   `json:"by_stage"`
	BySource      []SourceCount  `json:"by_source"`
	ByMonth       []MonthCount   `json:"by_month"`
	HealthBuckets []HealthBucket `json:"health_buckets"`
}

// VoiceCallAnalytics is the call performance report
type VoiceCallAnalytics struct {
	TotalCalls      int64                            `json:"total_calls"`
	ByStatus        map[models.VoiceCallStatus]int64 `json:"by_status"`
	ByOutcome       map[models.CallOutcome]int64     `json:"by_outcome"`
	CompletionRate  float64                          `json:"completion_rate"`
	AverageDuration *float64                         `json:"average_duration_seconds"`
}

// InterfaceAnalyticsService defines the reporting interface
type InterfaceAnalyticsService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetStageDistribution(ctx context.Context) ([]StageCount, error)
	GetRecentActivity(ctx context.Context, limit int) ([]models.ActivityRecord, error)
	GetConvertAnalytics(ctx context.Context) (*ConvertAnalytics, error)
	GetVoiceCallAnalytics(ctx context.Context) (*VoiceCallAnalytics, error)
}

// AnalyticsService computes dashboard and reporting aggregates
type AnalyticsService struct {
	DB     *gorm.DB
	Config *config.Config
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, cfg *config.Config) InterfaceAnalyticsService {
	return &AnalyticsService{DB: db, Config: cfg, now: time.Now}
}

// 1 GetDashboardStats computes the headline dashboard numbers
func (s *AnalyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &DashboardStats{}

	if err := db.Model(&models.Convert{}).Count(&stats.TotalConverts).Error; err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.Convert{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.NewThisMonth).Error; err != nil {
		return nil, err
	}

	activeStages := []models.ConvertStage{
		models.StageNew, models.StageInFollowup,
		models.StageInClasses, models.StageInHouseFellowship,
	}
	if err := db.Model(&models.Convert{}).
		Where("stage IN ?", activeStages).
		Count(&stats.ActiveFollowups).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Convert{}).
		Where("stage = ?", models.StageEstablished).
		Count(&stats.Established).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Alert{}).
		Where("status = ?", models.AlertOpen).
		Count(&stats.OpenAlerts).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.VoiceCall{}).
		Where("status = ?", models.CallScheduled).
		Count(&stats.ScheduledCalls).Error; err != nil {
		return nil, err
	}

	var avg struct {
		Avg *float64
	}
	if err := db.Model(&models.Convert{}).
		Select("AVG(health_score) AS avg").
		Where("health_score IS NOT NULL").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	stats.AverageHealthScore = avg.Avg

	return stats, nil
}

// 2 GetStageDistribution counts converts per lifecycle stage. Every stage
// appears, zero counts included, in progression order.
func (s *AnalyticsService) GetStageDistribution(ctx context.Context) ([]StageCount, error) {
	type row struct {
		Stage models.ConvertStage
		Count int64
	}
	var rows []row
	err := s.DB.WithContext(ctx).Model(&models.Convert{}).
		Select("stage, COUNT(*) AS count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ConvertStage]int64, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Count
	}

	distribution := make([]StageCount, 0, len(models.AllStages()))
	for _, stage := range models.AllStages() {
		distribution = append(distribution, StageCount{
			Stage: stage,
			Label: models.StageLabel(stage),
			Count: counts[stage],
		})
	}
	return distribution, nil
}

// 3 GetRecentActivity returns the latest interaction events across all converts
func (s *AnalyticsService) GetRecentActivity(ctx context.Context, limit int) ([]models.ActivityRecord, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var records []models.ActivityRecord
	err := s.DB.WithContext(ctx).
		Preload("Convert").
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// 4 GetConvertAnalytics computes the convert breakdown report
func (s *AnalyticsService) GetConvertAnalytics(ctx context.Context) (*ConvertAnalytics, error) {
	byStage, err := s.GetStageDistribution(ctx)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)

	type sourceRow struct {
		Source models.ConvertSource
		Count  int64
	}
	var sourceRows []sourceRow
	err = db.Model(&models.Convert{}).
		Select("source, COUNT(*) AS count").
		Group("source").
		Order("count DESC").
		Scan(&sourceRows).Error
	if err != nil {
		return nil, err
	}
	bySource := make([]SourceCount, 0, len(sourceRows))
	for _, r := range sourceRows {
		bySource = append(bySource, SourceCount{Source: r.Source, Count: r.Count})
	}

	// Registrations per month, last six months including the current one
	now := s.now()
	byMonth := make([]MonthCount, 0, 6)
	for i := 5; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		var count int64
		if err := db.Model(&models.Convert{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count).Error; err != nil {
			return nil, err
		}
		byMonth = append(byMonth, MonthCount{Month: start.Format("2006-01"), Count: count})
	}

	buckets := []struct {
		name     string
		min, max int
	}{
		{"0-40", 0, 40},
		{"41-60", 41, 60},
		{"61-80", 61, 80},
		{"81-100", 81, 100},
	}
	healthBuckets := make([]HealthBucket, 0, len(buckets)+1)
	for _, b := range buckets {
		var count int64
		if err := db.Model(&models.Convert{}).
			Where("health_score >= ? AND health_score <= ?", b.min, b.max).
			Count(&count).Error; err != nil {
			return nil, err
		}
		healthBuckets = append(healthBuckets, HealthBucket{Bucket: b.name, Count: count})
	}
	var unscored int64
	if err := db.Model(&models.Convert{}).
		Where("health_score IS NULL").
		Count(&unscored).Error; err != nil {
		return nil, err
	}
	healthBuckets = append(healthBuckets, HealthBucket{Bucket: "unscored", Count: unscored})

	return &ConvertAnalytics{
		ByStage:       byStage,
		BySource:      bySource,
		ByMonth:       byMonth,
		HealthBuckets: healthBuckets,
	}, nil
}

// 5 GetVoiceCallAnalytics computes the call performance report
func (s *AnalyticsService) GetVoiceCallAnalytics(ctx context.Context) (*VoiceCallAnalytics, error) {
	db := s.DB.WithContext(ctx)
	report := &VoiceCallAnalytics{
		ByStatus:  make(map[models.VoiceCallStatus]int64),
		ByOutcome: make(map[models.CallOutcome]int64),
	}

	type statusRow struct {
		Status models.VoiceCallStatus
		Count  int64
	}
	var statusRows []statusRow
	err := db.Model(&models.VoiceCall{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	var terminal int64
	for _, r := range statusRows {
		report.ByStatus[r.Status] = r.Count
		report.TotalCalls += r.Count
		switch r.Status {
		case models.CallCompleted, models.CallFailed, models.CallNoAnswer:
			terminal += r.Count
		}
	}
	if terminal > 0 {
		report.CompletionRate = float64(report.ByStatus[models.CallCompleted]) / float64(terminal)
	}

	type outcomeRow struct {
		Outcome models.CallOutcome
		Count   int64
	}
	var outcomeRows []outcomeRow
	err = db.Model(&models.VoiceCall{}).
		Select("outcome, COUNT(*) AS count").
		Where("outcome IS NOT NULL").
		Group("outcome").
		Scan(&outcomeRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range outcomeRows {
		report.ByOutcome[r.Outcome] = r.Count
	}

	var avg struct {
		Avg *float64
	}
	err = db.Model(&models.VoiceCall{}).
		Select("AVG(duration_seconds) AS avg").
		Where("duration_seconds IS NOT NULL").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	report.AverageDuration = avg.Avg

	return report, nil
}
