package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

const (
	// Days without a stage change before stagnation fires
	stagnationThresholdDays = 45
	// Days without a visit or call before missed follow-up fires
	missedFollowupThresholdDays = 21
	// Scores at or below this are alert-worthy on a drop
	scoreDropCeiling = 60
	// Scores at or below this escalate the drop to high severity
	scoreDropHighCeiling = 40
)

// AlertFilter narrows the alert listing
type AlertFilter struct {
	ConvertID uint
	Status    models.AlertStatus
	Severity  models.AlertSeverity
}

// InterfaceAlertService defines the alert policy engine interface
type InterfaceAlertService interface {
	// Evaluate runs every policy rule against a convert's current state,
	// raising new alerts and auto-resolving cleared ones.
	Evaluate(ctx context.Context, convertID uint) ([]models.Alert, error)
	GetAlert(ctx context.Context, id uint) (*models.Alert, error)
	GetAlerts(ctx context.Context, filter AlertFilter, page, pageSize int) ([]models.Alert, int64, error)
	// UpdateStatus applies a manual status transition. Only the documented
	// edges are accepted; anything else returns ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id uint, status models.AlertStatus) (*models.Alert, error)
}

// AlertService raises and manages policy alerts
type AlertService struct {
	DB     *gorm.DB
	Config *config.Config
	now    func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(db *gorm.DB, cfg *config.Config) InterfaceAlertService {
	return &AlertService{DB: db, Config: cfg, now: time.Now}
}

// 1 Evaluate re-runs the policy rules for one convert
func (s *AlertService) Evaluate(ctx context.Context, convertID uint) ([]models.Alert, error) {
	unlock := convertLocks.Lock(convertID)
	defer unlock()

	var raised []models.Alert
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			convert, err := findConvert(tx, convertID)
			if err != nil {
				return err
			}
			raised, err = evaluateAlertsTx(tx, convert, s.now())
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return raised, nil
}

// 2 GetAlert returns one alert with its convert
func (s *AlertService) GetAlert(ctx context.Context, id uint) (*models.Alert, error) {
	var alert models.Alert
	err := s.DB.WithContext(ctx).Preload("Convert").First(&alert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: alert %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &alert, nil
}

// 3 GetAlerts returns a filtered, paginated alert listing
func (s *AlertService) GetAlerts(ctx context.Context, filter AlertFilter, page, pageSize int) ([]models.Alert, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Alert{})

	if filter.ConvertID != 0 {
		db = db.Where("convert_id = ?", filter.ConvertID)
	}
	if filter.Status != "" {
		if !models.ValidAlertStatus(filter.Status) {
			return nil, 0, fmt.Errorf("%w: unknown alert status %q", ErrInvalidTransition, filter.Status)
		}
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		db = db.Where("severity = ?", filter.Severity)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := db.Preload("Convert").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// 4 UpdateStatus applies a manual workflow transition to an alert
func (s *AlertService) UpdateStatus(ctx context.Context, id uint, status models.AlertStatus) (*models.Alert, error) {
	if !models.ValidAlertStatus(status) {
		return nil, fmt.Errorf("%w: unknown alert status %q", ErrInvalidTransition, status)
	}

	var alert models.Alert
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&alert, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: alert %d", ErrNotFound, id)
				}
				return err
			}
			if alert.Status == status {
				// Idempotent no-op
				return nil
			}
			if !models.ValidAlertStatusTransition(alert.Status, status) {
				return fmt.Errorf("%w: alert %d cannot move %s -> %s",
					ErrInvalidTransition, id, alert.Status, status)
			}
			alert.Status = status
			if status == models.AlertResolved {
				now := s.now()
				alert.ResolvedAt = &now
			}
			return tx.Save(&alert).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// alertCondition is the outcome of checking one rule against one convert
type alertCondition struct {
	holds       bool
	severity    models.AlertSeverity
	title       string
	description string
}

// evaluateAlertsTx checks each policy rule inside the caller's transaction.
// A holding rule raises at most one unresolved alert per (convert, rule);
// an open alert whose rule no longer holds is resolved automatically.
// Returns the alerts newly raised by this evaluation.
func evaluateAlertsTx(tx *gorm.DB, convert *models.Convert, now time.Time) ([]models.Alert, error) {
	conditions := map[models.AlertRule]alertCondition{}

	scoreDrop, err := checkScoreDrop(tx, convert)
	if err != nil {
		return nil, err
	}
	conditions[models.RuleScoreDrop] = scoreDrop

	stagnation, err := checkStageStagnation(tx, convert, now)
	if err != nil {
		return nil, err
	}
	conditions[models.RuleStageStagnation] = stagnation

	missed, err := checkMissedFollowup(tx, convert, now)
	if err != nil {
		return nil, err
	}
	conditions[models.RuleMissedFollowup] = missed

	var raised []models.Alert
	for _, rule := range []models.AlertRule{
		models.RuleScoreDrop, models.RuleStageStagnation, models.RuleMissedFollowup,
	} {
		cond := conditions[rule]

		var existing models.Alert
		err := tx.Where("convert_id = ? AND rule = ? AND status <> ?",
			convert.ID, rule, models.AlertResolved).
			Order("created_at DESC, id DESC").
			First(&existing).Error
		hasUnresolved := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		switch {
		case cond.holds && !hasUnresolved:
			alert := models.Alert{
				ConvertID:   convert.ID,
				Rule:        rule,
				Severity:    cond.severity,
				Title:       cond.title,
				Description: cond.description,
				Status:      models.AlertOpen,
			}
			if err := tx.Create(&alert).Error; err != nil {
				return nil, err
			}
			raised = append(raised, alert)
		case !cond.holds && hasUnresolved && existing.Status == models.AlertOpen:
			// Auto-resolve only untouched alerts; anything a worker has
			// acknowledged stays theirs to close.
			existing.Status = models.AlertResolved
			existing.ResolvedAt = &now
			if err := tx.Save(&existing).Error; err != nil {
				return nil, err
			}
		}
	}
	return raised, nil
}

// checkScoreDrop compares the two latest snapshots
func checkScoreDrop(tx *gorm.DB, convert *models.Convert) (alertCondition, error) {
	var snapshots []models.HealthScoreSnapshot
	err := tx.Where("convert_id = ?", convert.ID).
		Order("computed_at DESC, id DESC").
		Limit(2).
		Find(&snapshots).Error
	if err != nil {
		return alertCondition{}, err
	}
	if len(snapshots) < 2 {
		return alertCondition{}, nil
	}

	cur, prev := snapshots[0], snapshots[1]
	if cur.Score >= prev.Score || cur.Score > scoreDropCeiling {
		return alertCondition{}, nil
	}

	severity := models.SeverityMedium
	if cur.Score <= scoreDropHighCeiling {
		severity = models.SeverityHigh
	}
	return alertCondition{
		holds:    true,
		severity: severity,
		title:    "Health score dropped",
		description: fmt.Sprintf("%s's health score fell from %d to %d",
			convert.FullName(), prev.Score, cur.Score),
	}, nil
}

// checkStageStagnation measures time since the last stage change
func checkStageStagnation(tx *gorm.DB, convert *models.Convert, now time.Time) (alertCondition, error) {
	switch convert.Stage {
	case models.StageEstablished, models.StageHandedOver, models.StageInactive:
		return alertCondition{}, nil
	}

	since := convert.CreatedAt
	var lastChange models.ActivityRecord
	err := tx.Where("convert_id = ? AND type = ?", convert.ID, models.ActivityStageChange).
		Order("timestamp DESC, id DESC").
		First(&lastChange).Error
	if err == nil {
		since = lastChange.Timestamp
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return alertCondition{}, err
	}

	days := int(now.Sub(since).Hours() / 24)
	if now.Sub(since) <= stagnationThresholdDays*24*time.Hour {
		return alertCondition{}, nil
	}
	return alertCondition{
		holds:    true,
		severity: models.SeverityMedium,
		title:    "Stage stagnation",
		description: fmt.Sprintf("%s has been in stage %q for %d days",
			convert.FullName(), models.StageLabel(convert.Stage), days),
	}, nil
}

// checkMissedFollowup measures time since the last visit or voice call
func checkMissedFollowup(tx *gorm.DB, convert *models.Convert, now time.Time) (alertCondition, error) {
	if convert.Stage != models.StageNew && convert.Stage != models.StageInFollowup {
		return alertCondition{}, nil
	}

	// Creation counts as the baseline so brand-new converts with no
	// contact at all still trip the rule.
	since := convert.CreatedAt
	var lastContact models.ActivityRecord
	err := tx.Where("convert_id = ? AND type IN ?",
		convert.ID, []models.ActivityType{models.ActivityVisit, models.ActivityVoiceCall}).
		Order("timestamp DESC, id DESC").
		First(&lastContact).Error
	if err == nil {
		since = lastContact.Timestamp
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return alertCondition{}, err
	}

	days := int(now.Sub(since).Hours() / 24)
	if now.Sub(since) <= missedFollowupThresholdDays*24*time.Hour {
		return alertCondition{}, nil
	}
	return alertCondition{
		holds:    true,
		severity: models.SeverityHigh,
		title:    "Missed follow-up",
		description: fmt.Sprintf("%s has had no visit or call for %d days",
			convert.FullName(), days),
	}, nil
}

// resolveOpenAlertsTx resolves every unresolved alert for a convert, used
// when the convert leaves active follow-up
func resolveOpenAlertsTx(tx *gorm.DB, convertID uint, now time.Time) error {
	return tx.Model(&models.Alert{}).
		Where("convert_id = ? AND status <> ?", convertID, models.AlertResolved).
		Updates(map[string]interface{}{
			"status":      models.AlertResolved,
			"resolved_at": now,
		}).Error
}
