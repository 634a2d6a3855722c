package models

import (
	"time"
)

// ActivityType represents the type of an interaction event
type ActivityType string

const (
	ActivityVisit           ActivityType = "visit"
	ActivityClassAttendance ActivityType = "class_attendance"
	ActivityFellowship      ActivityType = "fellowship"
	ActivityVoiceCall       ActivityType = "voice_call"
	ActivityNote            ActivityType = "note"
	ActivityStageChange     ActivityType = "stage_change"
)

// Common activity outcomes. Outcomes are type-dependent: visits and classes
// use completed/attended/missed, voice_call carries the call outcome or the
// terminal failure status, stage_change carries "<from>-><to>".
const (
	OutcomeCompleted = "completed"
	OutcomeAttended  = "attended"
	OutcomeMissed    = "missed"
)

// ActivityRecord represents an interaction event owned by a Convert.
// Records are append-only: they are never edited once created.
type ActivityRecord struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ConvertID uint         `gorm:"not null;index" json:"convert_id"`
	Type      ActivityType `gorm:"type:varchar(30);not null;index" json:"type"`
	Outcome   string       `gorm:"type:varchar(50)" json:"outcome"`
	Timestamp time.Time    `gorm:"not null;index" json:"timestamp"`
	CreatedAt time.Time    `json:"created_at"`

	// Relations
	Convert *Convert `gorm:"foreignKey:ConvertID" json:"convert,omitempty"`
}

// ValidActivityType reports whether the type is one of the enumerated kinds
func ValidActivityType(t ActivityType) bool {
	switch t {
	case ActivityVisit, ActivityClassAttendance, ActivityFellowship,
		ActivityVoiceCall, ActivityNote, ActivityStageChange:
		return true
	}
	return false
}
