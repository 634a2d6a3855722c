package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// RecordActivityRequest carries a new interaction event
type RecordActivityRequest struct {
	Type      models.ActivityType `json:"type" binding:"required" example:"visit"`
	Outcome   string              `json:"outcome" example:"completed"`
	Timestamp *time.Time          `json:"timestamp"`
}

// InterfaceActivityService defines the activity history interface
type InterfaceActivityService interface {
	// Record appends an interaction event and refreshes the convert's
	// score and alerts in the same transaction. Stage changes cannot be
	// recorded here; they belong to the stage ledger.
	Record(ctx context.Context, convertID uint, req *RecordActivityRequest) (*models.ActivityRecord, error)
	GetActivities(ctx context.Context, convertID uint, page, pageSize int) ([]models.ActivityRecord, int64, error)
}

// ActivityService manages convert interaction history
type ActivityService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceSnapshotCache
	now    func() time.Time
}

// NewActivityService creates a new activity service
func NewActivityService(db *gorm.DB, cfg *config.Config, cache InterfaceSnapshotCache) InterfaceActivityService {
	return &ActivityService{DB: db, Config: cfg, Cache: cache, now: time.Now}
}

// 1 Record appends an interaction event for a convert
func (s *ActivityService) Record(ctx context.Context, convertID uint, req *RecordActivityRequest) (*models.ActivityRecord, error) {
	if !models.ValidActivityType(req.Type) {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidState, req.Type)
	}
	if req.Type == models.ActivityStageChange {
		return nil, fmt.Errorf("%w: stage changes are recorded by the stage ledger", ErrInvalidState)
	}

	unlock := convertLocks.Lock(convertID)
	defer unlock()

	var record *models.ActivityRecord
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			convert, err := findConvert(tx, convertID)
			if err != nil {
				return err
			}

			now := s.now()
			timestamp := now
			if req.Timestamp != nil {
				timestamp = *req.Timestamp
			}

			record = &models.ActivityRecord{
				ConvertID: convert.ID,
				Type:      req.Type,
				Outcome:   req.Outcome,
				Timestamp: timestamp,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}

			if convert.LastActivityAt == nil || timestamp.After(*convert.LastActivityAt) {
				convert.LastActivityAt = &timestamp
				if err := tx.Save(convert).Error; err != nil {
					return err
				}
			}

			if _, err := computeScoreTx(tx, convert, now); err != nil {
				return err
			}
			_, err = evaluateAlertsTx(tx, convert, now)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(s.Cache, convertID)
	return record, nil
}

// 2 GetActivities returns a convert's interaction history, newest first
func (s *ActivityService) GetActivities(ctx context.Context, convertID uint, page, pageSize int) ([]models.ActivityRecord, int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Convert{}).
		Where("id = ?", convertID).Count(&count).Error
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, fmt.Errorf("%w: convert %d", ErrNotFound, convertID)
	}

	db := s.DB.WithContext(ctx).Model(&models.ActivityRecord{}).
		Where("convert_id = ?", convertID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ActivityRecord
	err = db.Order("timestamp DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
