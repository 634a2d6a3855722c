package models

import (
	"time"
)

// VoiceCallStatus represents the state of an outbound call
type VoiceCallStatus string

const (
	CallScheduled  VoiceCallStatus = "scheduled"
	CallInProgress VoiceCallStatus = "in_progress"
	CallCompleted  VoiceCallStatus = "completed"
	CallFailed     VoiceCallStatus = "failed"
	CallNoAnswer   VoiceCallStatus = "no_answer"
)

// CallOutcome represents the result of a completed call
type CallOutcome string

const (
	OutcomeInterested        CallOutcome = "interested"
	OutcomeCallbackRequested CallOutcome = "callback_requested"
	OutcomeNotInterested     CallOutcome = "not_interested"
)

// ScriptPurpose represents what a call script is for
type ScriptPurpose string

const (
	PurposeWelcome    ScriptPurpose = "welcome"
	PurposeFollowup   ScriptPurpose = "followup"
	PurposeInvitation ScriptPurpose = "invitation"
	PurposeWelfare    ScriptPurpose = "welfare"
	PurposeGeneral    ScriptPurpose = "general"
)

// CallScript is a reusable script for voice-agent calls
type CallScript struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"type:varchar(100);not null" json:"name"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Purpose   ScriptPurpose `gorm:"type:varchar(20);not null;default:'general'" json:"purpose"`
	IsActive  bool          `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// VoiceCall is a scheduled or completed outbound follow-up call.
// Outcome and DurationSeconds are set if and only if Status is completed.
// Terminal records are never mutated by a reschedule; a new call row is
// created instead.
type VoiceCall struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CallID          string          `gorm:"type:varchar(40);uniqueIndex" json:"call_id"` // external uuid
	ConvertID       uint            `gorm:"not null;index" json:"convert_id"`
	ScriptID        *uint           `json:"script_id,omitempty"`
	Status          VoiceCallStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Outcome         *CallOutcome    `gorm:"type:varchar(30)" json:"outcome,omitempty"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	Transcript      string          `gorm:"type:text" json:"transcript,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	ScheduledAt     time.Time       `gorm:"not null" json:"scheduled_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	Convert *Convert    `gorm:"foreignKey:ConvertID" json:"convert,omitempty"`
	Script  *CallScript `gorm:"foreignKey:ScriptID" json:"script,omitempty"`
}

// Terminal reports whether the call reached a final status
func (v *VoiceCall) Terminal() bool {
	switch v.Status {
	case CallCompleted, CallFailed, CallNoAnswer:
		return true
	}
	return false
}

// ValidCallOutcome reports whether the outcome is one of the enumerated values
func ValidCallOutcome(o CallOutcome) bool {
	switch o {
	case OutcomeInterested, OutcomeCallbackRequested, OutcomeNotInterested:
		return true
	}
	return false
}

// ValidScriptPurpose reports whether the purpose is one of the enumerated values
func ValidScriptPurpose(p ScriptPurpose) bool {
	switch p {
	case PurposeWelcome, PurposeFollowup, PurposeInvitation, PurposeWelfare, PurposeGeneral:
		return true
	}
	return false
}
