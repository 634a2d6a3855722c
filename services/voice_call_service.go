package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// ScheduleCallRequest carries a new outbound call booking
type ScheduleCallRequest struct {
	ConvertID   uint       `json:"convert_id" binding:"required" example:"1"`
	ScriptID    *uint      `json:"script_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Notes       string     `json:"notes"`
}

// CompleteCallRequest carries the terminal result of an in-progress call.
// Outcome and DurationSeconds are accepted only with a completed status.
type CompleteCallRequest struct {
	Status          models.VoiceCallStatus `json:"status" binding:"required" example:"completed"`
	Outcome         *models.CallOutcome    `json:"outcome"`
	DurationSeconds *int                   `json:"duration_seconds"`
	Transcript      string                 `json:"transcript"`
	Notes           string                 `json:"notes"`
}

// CreateScriptRequest carries a new call script
type CreateScriptRequest struct {
	Name    string               `json:"name" binding:"required" example:"First week welcome"`
	Content string               `json:"content" binding:"required"`
	Purpose models.ScriptPurpose `json:"purpose" example:"welcome"`
}

// VoiceCallFilter narrows the call listing
type VoiceCallFilter struct {
	ConvertID uint
	Status    models.VoiceCallStatus
}

// InterfaceVoiceCallService defines the voice-call workflow interface
type InterfaceVoiceCallService interface {
	ScheduleCall(ctx context.Context, req *ScheduleCallRequest) (*models.VoiceCall, error)
	StartCall(ctx context.Context, id uint) (*models.VoiceCall, error)
	// CompleteCall finishes an in-progress call. Terminal calls feed an
	// activity record, a rescore and an alert sweep in one transaction.
	CompleteCall(ctx context.Context, id uint, req *CompleteCallRequest) (*models.VoiceCall, error)
	// SimulateCall runs a scheduled call end to end with a drawn outcome.
	SimulateCall(ctx context.Context, id uint) (*models.VoiceCall, error)
	// RescheduleCall books a fresh call for the same convert and script.
	// The original record is retained untouched.
	RescheduleCall(ctx context.Context, id uint, scheduledAt time.Time) (*models.VoiceCall, error)
	GetCall(ctx context.Context, id uint) (*models.VoiceCall, error)
	GetCalls(ctx context.Context, filter VoiceCallFilter, page, pageSize int) ([]models.VoiceCall, int64, error)
	GetScripts(ctx context.Context) ([]models.CallScript, error)
	CreateScript(ctx context.Context, req *CreateScriptRequest) (*models.CallScript, error)
}

// VoiceCallService runs the outbound voice-agent call workflow
type VoiceCallService struct {
	DB        *gorm.DB
	Config    *config.Config
	Publisher InterfaceCallEventPublisher
	Strategy  OutcomeStrategy
	Cache     InterfaceSnapshotCache
	now       func() time.Time
}

// NewVoiceCallService creates a new voice-call service
func NewVoiceCallService(db *gorm.DB, cfg *config.Config, publisher InterfaceCallEventPublisher, strategy OutcomeStrategy, cache InterfaceSnapshotCache) InterfaceVoiceCallService {
	return &VoiceCallService{
		DB:        db,
		Config:    cfg,
		Publisher: publisher,
		Strategy:  strategy,
		Cache:     cache,
		now:       time.Now,
	}
}

// 1 ScheduleCall books an outbound call for a convert
func (s *VoiceCallService) ScheduleCall(ctx context.Context, req *ScheduleCallRequest) (*models.VoiceCall, error) {
	var call *models.VoiceCall
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := findConvert(tx, req.ConvertID); err != nil {
				return err
			}
			if req.ScriptID != nil {
				var script models.CallScript
				if err := tx.First(&script, *req.ScriptID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: script %d", ErrNotFound, *req.ScriptID)
					}
					return err
				}
			}

			scheduledAt := s.now()
			if req.ScheduledAt != nil {
				scheduledAt = *req.ScheduledAt
			}
			call = &models.VoiceCall{
				CallID:      uuid.New().String(),
				ConvertID:   req.ConvertID,
				ScriptID:    req.ScriptID,
				Status:      models.CallScheduled,
				Notes:       req.Notes,
				ScheduledAt: scheduledAt,
			}
			return tx.Create(call).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Publisher.PublishCallEvent(call, "scheduled")
	return call, nil
}

// 2 StartCall moves a scheduled call into progress
func (s *VoiceCallService) StartCall(ctx context.Context, id uint) (*models.VoiceCall, error) {
	var call models.VoiceCall
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := findCall(tx, id, &call); err != nil {
				return err
			}
			if call.Status != models.CallScheduled {
				return fmt.Errorf("%w: call %d is %s, only scheduled calls can start",
					ErrInvalidState, id, call.Status)
			}
			now := s.now()
			call.Status = models.CallInProgress
			call.StartedAt = &now
			return tx.Save(&call).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Publisher.PublishCallEvent(&call, "started")
	return &call, nil
}

// 3 CompleteCall records the terminal result of an in-progress call
func (s *VoiceCallService) CompleteCall(ctx context.Context, id uint, req *CompleteCallRequest) (*models.VoiceCall, error) {
	switch req.Status {
	case models.CallCompleted:
		if req.Outcome == nil || !models.ValidCallOutcome(*req.Outcome) {
			return nil, fmt.Errorf("%w: a completed call requires a valid outcome", ErrInvalidState)
		}
	case models.CallFailed, models.CallNoAnswer:
		if req.Outcome != nil || req.DurationSeconds != nil {
			return nil, fmt.Errorf("%w: outcome and duration belong to completed calls only", ErrInvalidState)
		}
	default:
		return nil, fmt.Errorf("%w: %q is not a terminal call status", ErrInvalidState, req.Status)
	}

	var call models.VoiceCall
	err := s.withCallConvertTx(ctx, id, &call, func(tx *gorm.DB, convert *models.Convert, now time.Time) error {
		if call.Status != models.CallInProgress {
			return fmt.Errorf("%w: call %d is %s, only in-progress calls can complete",
				ErrInvalidState, id, call.Status)
		}

		call.Status = req.Status
		call.Transcript = req.Transcript
		if req.Notes != "" {
			call.Notes = req.Notes
		}
		call.EndedAt = &now
		if req.Status == models.CallCompleted {
			call.Outcome = req.Outcome
			duration := 0
			if req.DurationSeconds != nil {
				duration = *req.DurationSeconds
			} else if call.StartedAt != nil {
				duration = int(now.Sub(*call.StartedAt).Seconds())
			}
			call.DurationSeconds = &duration
		}
		if err := tx.Save(&call).Error; err != nil {
			return err
		}
		return appendCallActivityTx(tx, convert, &call, now)
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(s.Cache, call.ConvertID)
	s.Publisher.PublishCallEvent(&call, "ended")
	return &call, nil
}

// 4 SimulateCall plays a scheduled call through to a drawn terminal state
func (s *VoiceCallService) SimulateCall(ctx context.Context, id uint) (*models.VoiceCall, error) {
	var call models.VoiceCall
	err := s.withCallConvertTx(ctx, id, &call, func(tx *gorm.DB, convert *models.Convert, now time.Time) error {
		if call.Status != models.CallScheduled {
			return fmt.Errorf("%w: call %d is %s, only scheduled calls can be simulated",
				ErrInvalidState, id, call.Status)
		}

		var script *models.CallScript
		if call.ScriptID != nil {
			var sc models.CallScript
			if err := tx.First(&sc, *call.ScriptID).Error; err == nil {
				script = &sc
			}
		}

		result := s.Strategy.Draw(convert, script)
		call.Status = result.Status
		call.EndedAt = &now
		if result.Status == models.CallCompleted {
			outcome := result.Outcome
			duration := result.DurationSeconds
			started := now.Add(-time.Duration(duration) * time.Second)
			call.StartedAt = &started
			call.Outcome = &outcome
			call.DurationSeconds = &duration
			call.Transcript = result.Transcript
		} else {
			started := now
			call.StartedAt = &started
		}
		if err := tx.Save(&call).Error; err != nil {
			return err
		}
		return appendCallActivityTx(tx, convert, &call, now)
	})
	if err != nil {
		return nil, err
	}
	invalidateSnapshot(s.Cache, call.ConvertID)
	s.Publisher.PublishCallEvent(&call, "ended")
	return &call, nil
}

// 5 RescheduleCall books a replacement call, leaving the original intact
func (s *VoiceCallService) RescheduleCall(ctx context.Context, id uint, scheduledAt time.Time) (*models.VoiceCall, error) {
	var replacement *models.VoiceCall
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var original models.VoiceCall
			if err := findCall(tx, id, &original); err != nil {
				return err
			}
			switch original.Status {
			case models.CallScheduled, models.CallFailed, models.CallNoAnswer:
			default:
				return fmt.Errorf("%w: call %d is %s and cannot be rescheduled",
					ErrInvalidState, id, original.Status)
			}

			replacement = &models.VoiceCall{
				CallID:      uuid.New().String(),
				ConvertID:   original.ConvertID,
				ScriptID:    original.ScriptID,
				Status:      models.CallScheduled,
				Notes:       original.Notes,
				ScheduledAt: scheduledAt,
			}
			return tx.Create(replacement).Error
		})
	})
	if err != nil {
		return nil, err
	}
	s.Publisher.PublishCallEvent(replacement, "scheduled")
	return replacement, nil
}

// 6 GetCall returns one call with its convert and script
func (s *VoiceCallService) GetCall(ctx context.Context, id uint) (*models.VoiceCall, error) {
	var call models.VoiceCall
	err := s.DB.WithContext(ctx).
		Preload("Convert").
		Preload("Script").
		First(&call, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: call %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &call, nil
}

// 7 GetCalls returns a filtered, paginated call listing
func (s *VoiceCallService) GetCalls(ctx context.Context, filter VoiceCallFilter, page, pageSize int) ([]models.VoiceCall, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.VoiceCall{})
	if filter.ConvertID != 0 {
		db = db.Where("convert_id = ?", filter.ConvertID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var calls []models.VoiceCall
	err := db.Preload("Convert").
		Order("scheduled_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&calls).Error
	if err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

// 8 GetScripts returns the active call scripts
func (s *VoiceCallService) GetScripts(ctx context.Context) ([]models.CallScript, error) {
	var scripts []models.CallScript
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&scripts).Error
	if err != nil {
		return nil, err
	}
	return scripts, nil
}

// 9 CreateScript adds a reusable call script
func (s *VoiceCallService) CreateScript(ctx context.Context, req *CreateScriptRequest) (*models.CallScript, error) {
	purpose := req.Purpose
	if purpose == "" {
		purpose = models.PurposeGeneral
	}
	if !models.ValidScriptPurpose(purpose) {
		return nil, fmt.Errorf("%w: unknown script purpose %q", ErrInvalidState, purpose)
	}
	script := &models.CallScript{
		Name:     req.Name,
		Content:  req.Content,
		Purpose:  purpose,
		IsActive: true,
	}
	err := withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Create(script).Error
	})
	if err != nil {
		return nil, err
	}
	return script, nil
}

// withCallConvertTx loads a call, locks its convert aggregate and runs fn
// inside a retried transaction. Used by the terminal call paths that write
// derived activity, score and alert state.
func (s *VoiceCallService) withCallConvertTx(ctx context.Context, id uint, call *models.VoiceCall, fn func(tx *gorm.DB, convert *models.Convert, now time.Time) error) error {
	// The convert id is stable for the call's lifetime, so reading it
	// outside the lock is safe.
	var probe models.VoiceCall
	if err := findCall(s.DB.WithContext(ctx), id, &probe); err != nil {
		return err
	}

	unlock := convertLocks.Lock(probe.ConvertID)
	defer unlock()

	return withStorageRetry(func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := findCall(tx, id, call); err != nil {
				return err
			}
			convert, err := findConvert(tx, call.ConvertID)
			if err != nil {
				return err
			}
			now := s.now()
			if err := fn(tx, convert, now); err != nil {
				return err
			}
			if convert.LastActivityAt == nil || now.After(*convert.LastActivityAt) {
				convert.LastActivityAt = &now
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
}

// appendCallActivityTx writes the voice_call activity record for a call
// that just reached a terminal status. Completed calls carry the call
// outcome; failed and unanswered calls carry the terminal status so the
// responsiveness factor can count attempts.
func appendCallActivityTx(tx *gorm.DB, convert *models.Convert, call *models.VoiceCall, now time.Time) error {
	outcome := string(call.Status)
	if call.Status == models.CallCompleted && call.Outcome != nil {
		outcome = string(*call.Outcome)
	}
	record := models.ActivityRecord{
		ConvertID: convert.ID,
		Type:      models.ActivityVoiceCall,
		Outcome:   outcome,
		Timestamp: now,
	}
	return tx.Create(&record).Error
}

// findCall loads a call by id, mapping missing rows to the domain error
func findCall(tx *gorm.DB, id uint, call *models.VoiceCall) error {
	if err := tx.First(call, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: call %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}
