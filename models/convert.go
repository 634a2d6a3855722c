package models

import (
	"time"
)

// ConvertStage represents the lifecycle stage of a convert
type ConvertStage string

const (
	StageNew               ConvertStage = "new"
	StageInFollowup        ConvertStage = "in_followup"
	StageInClasses         ConvertStage = "in_classes"
	StageInHouseFellowship ConvertStage = "in_house_fellowship"
	StageEstablished       ConvertStage = "established"
	StageHandedOver        ConvertStage = "handed_over"
	StageInactive          ConvertStage = "inactive"
)

// ConvertSource represents the channel a convert came through
type ConvertSource string

const (
	SourceService      ConvertSource = "service"
	SourceCrusade      ConvertSource = "crusade"
	SourceOutreach     ConvertSource = "outreach"
	SourceProgramme    ConvertSource = "programme"
	SourcePartner      ConvertSource = "partner"
	SourceReferral     ConvertSource = "referral"
	SourceWalkIn       ConvertSource = "walk_in"
	SourcePhoneInquiry ConvertSource = "phone_inquiry"
	SourceOther        ConvertSource = "other"
)

// Convert represents a person tracked through the follow-up lifecycle
type Convert struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	FirstName        string        `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName         string        `gorm:"type:varchar(50);not null" json:"last_name"`
	Phone            string        `gorm:"type:varchar(20);not null;index" json:"phone"`
	Email            string        `gorm:"type:varchar(100)" json:"email,omitempty"`
	City             string        `gorm:"type:varchar(100)" json:"city,omitempty"`
	State            string        `gorm:"type:varchar(100)" json:"state,omitempty"`
	Occupation       string        `gorm:"type:varchar(100)" json:"occupation,omitempty"`
	Notes            string        `gorm:"type:text" json:"notes,omitempty"`
	Stage            ConvertStage  `gorm:"type:varchar(30);not null;default:'new';index" json:"stage"`
	Source           ConvertSource `gorm:"type:varchar(30);not null;default:'service'" json:"source"`
	HealthScore      *int          `json:"health_score"` // nil until first computation
	AssignedWorkerID *uint         `json:"assigned_worker_id,omitempty"`
	LastActivityAt   *time.Time    `json:"last_activity_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	// Relations
	AssignedWorker *User            `gorm:"foreignKey:AssignedWorkerID" json:"assigned_worker,omitempty"`
	Activities     []ActivityRecord `gorm:"foreignKey:ConvertID" json:"activities,omitempty"`
	Alerts         []Alert          `gorm:"foreignKey:ConvertID" json:"alerts,omitempty"`
	VoiceCalls     []VoiceCall      `gorm:"foreignKey:ConvertID" json:"voice_calls,omitempty"`
}

// FullName returns the convert's display name
func (c *Convert) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ValidStage reports whether the stage is one of the seven enumerated values
func ValidStage(s ConvertStage) bool {
	switch s {
	case StageNew, StageInFollowup, StageInClasses, StageInHouseFellowship,
		StageEstablished, StageHandedOver, StageInactive:
		return true
	}
	return false
}

// StageLabel returns the human-readable label for a stage. Unknown values
// are rejected by ValidStage before reaching here; the empty string marks
// a programming error rather than silently reusing a default label.
func StageLabel(s ConvertStage) string {
	switch s {
	case StageNew:
		return "New"
	case StageInFollowup:
		return "In Follow-up"
	case StageInClasses:
		return "In Classes"
	case StageInHouseFellowship:
		return "In House Fellowship"
	case StageEstablished:
		return "Established"
	case StageHandedOver:
		return "Handed Over"
	case StageInactive:
		return "Inactive"
	}
	return ""
}

// ValidSource reports whether the source is one of the enumerated channels
func ValidSource(s ConvertSource) bool {
	switch s {
	case SourceService, SourceCrusade, SourceOutreach, SourceProgramme,
		SourcePartner, SourceReferral, SourceWalkIn, SourcePhoneInquiry,
		SourceOther:
		return true
	}
	return false
}

// AllStages lists the seven lifecycle stages in progression order
func AllStages() []ConvertStage {
	return []ConvertStage{
		StageNew, StageInFollowup, StageInClasses, StageInHouseFellowship,
		StageEstablished, StageHandedOver, StageInactive,
	}
}

// AllSources lists the enumerated source channels
func AllSources() []ConvertSource {
	return []ConvertSource{
		SourceService, SourceCrusade, SourceOutreach, SourceProgramme,
		SourcePartner, SourceReferral, SourceWalkIn, SourcePhoneInquiry,
		SourceOther,
	}
}
