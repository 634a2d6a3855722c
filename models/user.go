package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a staff user
type UserRole string

const (
	RoleMainAdmin         UserRole = "main_admin"
	RoleClientAdmin       UserRole = "client_admin"
	RoleDataEntry         UserRole = "data_entry"
	RoleFollowupLeader    UserRole = "followup_leader"
	RoleFollowupWorker    UserRole = "followup_worker"
	RoleMentor            UserRole = "mentor"
	RoleCounsellingLeader UserRole = "counselling_leader"
	RoleWelfareOfficer    UserRole = "welfare_officer"
	RoleReadonly          UserRole = "readonly"
	RoleVoiceAgent        UserRole = "voice_agent"
)

// User represents a ministry staff account (admins, follow-up workers, mentors)
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Username  string    `gorm:"type:varchar(50)" json:"username,omitempty"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Role      UserRole  `gorm:"type:varchar(30);not null;default:'followup_worker'" json:"role"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Location  string    `gorm:"type:varchar(100)" json:"location"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"` // never exposed in JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether the role is one of the enumerated staff roles
func ValidRole(r UserRole) bool {
	switch r {
	case RoleMainAdmin, RoleClientAdmin, RoleDataEntry, RoleFollowupLeader,
		RoleFollowupWorker, RoleMentor, RoleCounsellingLeader,
		RoleWelfareOfficer, RoleReadonly, RoleVoiceAgent:
		return true
	}
	return false
}

// BeforeCreate is a GORM hook run before a new record is created
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Password != "" && len(u.Password) < 60 {
		hashedPassword, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashedPassword
	}
	return nil
}

// BeforeSave is a GORM hook run before a record is saved
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Hash the password unless it already looks like a bcrypt hash
	if u.Password != "" && len(u.Password) < 60 {
		hashedPassword, err := HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashedPassword
	}
	return nil
}
