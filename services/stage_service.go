package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// StageTransitionRequest carries a requested stage move. FromStage is an
// optional optimistic guard: when set, the move is rejected with a conflict
// if the convert has meanwhile left that stage.
type StageTransitionRequest struct {
	ToStage   models.ConvertStage  `json:"to_stage" binding:"required" example:"in_followup"`
	FromStage *models.ConvertStage `json:"from_stage" example:"new"`
}

// InterfaceStageService defines the stage ledger interface
type InterfaceStageService interface {
	// Transition moves a convert along the lifecycle. The stage change,
	// its ledger record, the rescore and the alert sweep commit together
	// or not at all.
	Transition(ctx context.Context, convertID uint, req *StageTransitionRequest) (*models.Convert, error)
	// History returns the convert's stage-change ledger, oldest first.
	History(ctx context.Context, convertID uint) ([]models.ActivityRecord, error)
}

// StageService moves converts through the follow-up lifecycle
type StageService struct {
	DB     *gorm.DB
	Config *config.Config
	Cache  InterfaceSnapshotCache
	now    func() time.Time
}

// NewStageService creates a new stage service
func NewStageService(db *gorm.DB, cfg *config.Config, cache InterfaceSnapshotCache) InterfaceStageService {
	return &StageService{DB: db, Config: cfg, Cache: cache, now: time.Now}
}

// allowedStageTransition encodes the lifecycle edges: the forward chain,
// dropout to inactive from any non-terminal stage, and reactivation from
// inactive back into follow-up.
func allowedStageTransition(from, to models.ConvertStage) bool {
	if to == models.StageInactive {
		return from != models.StageHandedOver && from != models.StageInactive
	}
	switch from {
	case models.StageNew:
		return to == models.StageInFollowup
	case models.StageInFollowup:
		return to == models.StageInClasses
	case models.StageInClasses:
		return to == models.StageInHouseFellowship
	case models.StageInHouseFellowship:
		return to == models.StageEstablished
	case models.StageEstablished:
		return to == models.StageHandedOver
	case models.StageInactive:
		return to == models.StageInFollowup
	}
	return false
}

// 1 Transition applies a stage move with its derived writes
func (s *StageService) Transition(ctx context.Context, convertID uint, req *StageTransitionRequest) (*models.Convert, error) {
	if !models.ValidStage(req.ToStage) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, req.ToStage)
	}
	if req.FromStage != nil && !models.ValidStage(*req.FromStage) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, *req.FromStage)
	}

	unlock := convertLocks.Lock(convertID)
	defer unlock()

	var result *models.Convert
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			convert, err := findConvert(tx, convertID)
			if err != nil {
				return err
			}

			if req.FromStage != nil && *req.FromStage != convert.Stage {
				return fmt.Errorf("%w: convert %d is in stage %s, not %s",
					ErrConflict, convertID, convert.Stage, *req.FromStage)
			}

			if req.ToStage == convert.Stage {
				// Idempotent no-op, nothing recorded
				result = convert
				return nil
			}

			if !allowedStageTransition(convert.Stage, req.ToStage) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, convert.Stage, req.ToStage)
			}

			now := s.now()
			fromStage := convert.Stage

			record := models.ActivityRecord{
				ConvertID: convert.ID,
				Type:      models.ActivityStageChange,
				Outcome:   fmt.Sprintf("%s->%s", fromStage, req.ToStage),
				Timestamp: now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}

			convert.Stage = req.ToStage
			convert.LastActivityAt = &now
			if err := tx.Save(convert).Error; err != nil {
				return err
			}

			if _, err := computeScoreTx(tx, convert, now); err != nil {
				return err
			}

			if req.ToStage == models.StageInactive {
				// Leaving active follow-up closes the outstanding alerts.
				// The rule sweep is skipped so the fresh snapshot cannot
				// reopen what was just resolved; an inactive convert exits
				// with nothing open.
				if err := resolveOpenAlertsTx(tx, convert.ID, now); err != nil {
					return err
				}
			} else if _, err := evaluateAlertsTx(tx, convert, now); err != nil {
				return err
			}

			result = convert
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(s.Cache, convertID)
	return result, nil
}

// 2 History returns the stage-change ledger for a convert
func (s *StageService) History(ctx context.Context, convertID uint) ([]models.ActivityRecord, error) {
	if _, err := s.exists(ctx, convertID); err != nil {
		return nil, err
	}
	var records []models.ActivityRecord
	err := s.DB.WithContext(ctx).
		Where("convert_id = ? AND type = ?", convertID, models.ActivityStageChange).
		Order("timestamp ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *StageService) exists(ctx context.Context, convertID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Convert{}).
		Where("id = ?", convertID).Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, fmt.Errorf("%w: convert %d", ErrNotFound, convertID)
	}
	return true, nil
}
