package models

import (
	"time"
)

// AlertRule identifies the policy rule that raised an alert
type AlertRule string

const (
	RuleScoreDrop       AlertRule = "score_drop"
	RuleStageStagnation AlertRule = "stage_stagnation"
	RuleMissedFollowup  AlertRule = "missed_followup"
)

// AlertSeverity represents how urgent an alert is
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// AlertStatus represents the handling state of an alert
type AlertStatus string

const (
	AlertOpen         AlertStatus = "open"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertInProgress   AlertStatus = "in_progress"
	AlertResolved     AlertStatus = "resolved"
)

// Alert is a rule-derived notice requiring follow-up action. At most one
// open alert may exist per (convert, rule) pair.
type Alert struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ConvertID   uint          `gorm:"not null;index" json:"convert_id"`
	Rule        AlertRule     `gorm:"type:varchar(30);not null;index" json:"rule"`
	Severity    AlertSeverity `gorm:"type:varchar(10);not null" json:"severity"`
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      AlertStatus   `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"` // set only on transition into resolved
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Convert *Convert `gorm:"foreignKey:ConvertID" json:"convert,omitempty"`
}

// ValidAlertStatus reports whether the status is one of the enumerated values
func ValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertOpen, AlertAcknowledged, AlertInProgress, AlertResolved:
		return true
	}
	return false
}

// ValidAlertStatusTransition reports whether an alert may move between the
// two statuses. Resolved is terminal.
func ValidAlertStatusTransition(from, to AlertStatus) bool {
	switch from {
	case AlertOpen:
		return to == AlertAcknowledged || to == AlertResolved
	case AlertAcknowledged:
		return to == AlertInProgress
	case AlertInProgress:
		return to == AlertResolved
	}
	return false
}

// SeverityLabel returns the display label for a severity. Exhaustive by
// construction; unknown values return the empty string.
func SeverityLabel(s AlertSeverity) string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	}
	return ""
}
