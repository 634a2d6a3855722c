package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// Factor weights, summing to 100
const (
	weightRecency            = 30
	weightVisitFrequency     = 25
	weightClassAttendance    = 15
	weightFellowship         = 15
	weightCallResponsiveness = 15

	// Engagement window for time-bounded factors
	scoreWindowDays = 90
	// Recency decays linearly to zero at this horizon
	recencyHorizonDays = 90.0
	// Visits per window that count as full marks (roughly weekly)
	fullMarksVisits = 12
	// Fellowship meetings per window that count as full marks
	fullMarksFellowship = 6
)

// InterfaceHealthScoreService defines the health scoring engine interface
type InterfaceHealthScoreService interface {
	// ComputeScore recomputes the convert's score from stored history.
	// Returns (nil, nil) when the convert has no activity records yet:
	// "no score" must not be conflated with a zero score.
	ComputeScore(ctx context.Context, convertID uint) (*models.HealthScoreSnapshot, error)
	// GetLatest returns the latest snapshot, recomputing first when the
	// convert has activity newer than the snapshot.
	GetLatest(ctx context.Context, convertID uint) (*models.HealthScoreSnapshot, error)
}

// HealthScoreService computes engagement health scores
type HealthScoreService struct {
	DB     *gorm.DB
	Config *config.Config
	now    func() time.Time
}

// NewHealthScoreService creates a new health scoring service
func NewHealthScoreService(db *gorm.DB, cfg *config.Config) InterfaceHealthScoreService {
	return &HealthScoreService{DB: db, Config: cfg, now: time.Now}
}

// 1 ComputeScore recomputes and persists the convert's health score
func (s *HealthScoreService) ComputeScore(ctx context.Context, convertID uint) (*models.HealthScoreSnapshot, error) {
	unlock := convertLocks.Lock(convertID)
	defer unlock()

	var snapshot *models.HealthScoreSnapshot
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			convert, err := findConvert(tx, convertID)
			if err != nil {
				return err
			}
			snapshot, err = computeScoreTx(tx, convert, s.now())
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// 2 GetLatest returns the latest snapshot, recomputing stale ones first
func (s *HealthScoreService) GetLatest(ctx context.Context, convertID uint) (*models.HealthScoreSnapshot, error) {
	var latest models.HealthScoreSnapshot
	err := s.DB.WithContext(ctx).
		Where("convert_id = ?", convertID).
		Order("computed_at DESC, id DESC").
		First(&latest).Error
	switch {
	case err == nil:
		var convert models.Convert
		if err := s.DB.WithContext(ctx).First(&convert, convertID).Error; err == nil &&
			convert.LastActivityAt != nil && convert.LastActivityAt.After(latest.ComputedAt) {
			return s.ComputeScore(ctx, convertID)
		}
		return &latest, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No snapshot yet; compute one if the convert has history
		snapshot, err := s.ComputeScore(ctx, convertID)
		if err != nil {
			return nil, err
		}
		if snapshot == nil {
			return nil, fmt.Errorf("%w: no health score for convert %d", ErrNotFound, convertID)
		}
		return snapshot, nil
	default:
		return nil, err
	}
}

// findConvert loads a convert inside a transaction, mapping missing rows
// to the domain not-found error
func findConvert(tx *gorm.DB, convertID uint) (*models.Convert, error) {
	var convert models.Convert
	if err := tx.First(&convert, convertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: convert %d", ErrNotFound, convertID)
		}
		return nil, err
	}
	return &convert, nil
}

// computeScoreTx recomputes the score inside the caller's transaction.
// The computation is pure over the stored activity set and the supplied
// now: identical inputs produce an identical snapshot, and an unchanged
// result reuses the previous row instead of appending a duplicate.
func computeScoreTx(tx *gorm.DB, convert *models.Convert, now time.Time) (*models.HealthScoreSnapshot, error) {
	var records []models.ActivityRecord
	if err := tx.Where("convert_id = ?", convert.ID).
		Order("timestamp ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	factors := computeFactors(records, now)
	score := weightedScore(factors)

	var prev models.HealthScoreSnapshot
	err := tx.Where("convert_id = ?", convert.ID).
		Order("computed_at DESC, id DESC").
		First(&prev).Error
	if err == nil && prev.Score == score && factorsEqual(prev.Factors, factors) {
		return &prev, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	snapshot := &models.HealthScoreSnapshot{
		ConvertID:  convert.ID,
		Score:      score,
		Factors:    factors,
		ComputedAt: now,
	}
	if err := tx.Create(snapshot).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Convert{}).Where("id = ?", convert.ID).
		Update("health_score", score).Error; err != nil {
		return nil, err
	}
	convert.HealthScore = &score
	return snapshot, nil
}

// computeFactors derives the named factor sub-scores from activity history
func computeFactors(records []models.ActivityRecord, now time.Time) models.FactorMap {
	windowStart := now.AddDate(0, 0, -scoreWindowDays)

	var (
		lastActivity    time.Time
		visits          int
		classesAttended int
		classesTotal    int
		fellowship      int
		callsAttempted  int
		callsAnswered   int
	)

	for _, r := range records {
		if r.Timestamp.After(lastActivity) {
			lastActivity = r.Timestamp
		}
		inWindow := r.Timestamp.After(windowStart)

		switch r.Type {
		case models.ActivityVisit:
			if inWindow && r.Outcome != models.OutcomeMissed {
				visits++
			}
		case models.ActivityClassAttendance:
			classesTotal++
			if r.Outcome == models.OutcomeAttended {
				classesAttended++
			}
		case models.ActivityFellowship:
			if inWindow {
				fellowship++
			}
		case models.ActivityVoiceCall:
			if inWindow {
				callsAttempted++
				if models.ValidCallOutcome(models.CallOutcome(r.Outcome)) {
					callsAnswered++
				}
			}
		}
	}

	// Recency: full marks now, zero at the horizon
	daysSince := now.Sub(lastActivity).Hours() / 24
	recency := clampScore(int(math.Round(100 * (recencyHorizonDays - daysSince) / recencyHorizonDays)))

	visitScore := clampScore(visits * 100 / fullMarksVisits)

	classScore := 0
	if classesTotal > 0 {
		classScore = clampScore(classesAttended * 100 / classesTotal)
	}

	fellowshipScore := clampScore(fellowship * 100 / fullMarksFellowship)

	callScore := 0
	if callsAttempted > 0 {
		callScore = clampScore(callsAnswered * 100 / callsAttempted)
	}

	return models.FactorMap{
		models.FactorRecency:            recency,
		models.FactorVisitFrequency:     visitScore,
		models.FactorClassAttendance:    classScore,
		models.FactorFellowship:         fellowshipScore,
		models.FactorCallResponsiveness: callScore,
	}
}

// weightedScore folds the factor sub-scores into the 0-100 composite
func weightedScore(factors models.FactorMap) int {
	sum := factors[models.FactorRecency]*weightRecency +
		factors[models.FactorVisitFrequency]*weightVisitFrequency +
		factors[models.FactorClassAttendance]*weightClassAttendance +
		factors[models.FactorFellowship]*weightFellowship +
		factors[models.FactorCallResponsiveness]*weightCallResponsiveness
	return clampScore(int(math.Round(float64(sum) / 100.0)))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func factorsEqual(a, b models.FactorMap) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
