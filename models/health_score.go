package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Health score factor names. Weights are defined by the scoring engine and
// sum to 100.
const (
	FactorRecency            = "recency"
	FactorVisitFrequency     = "visit_frequency"
	FactorClassAttendance    = "class_attendance"
	FactorFellowship         = "fellowship_participation"
	FactorCallResponsiveness = "call_responsiveness"
)

// FactorMap stores named factor sub-scores (0-100 each) as a JSON column
type FactorMap map[string]int

// Value implements driver.Valuer. encoding/json sorts map keys, so the
// serialized form is stable across recomputations.
func (m FactorMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *FactorMap) Scan(value interface{}) error {
	if value == nil {
		*m = FactorMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported type for FactorMap")
}

// HealthScoreSnapshot records one computation of a convert's health score.
// History is retained; the latest row is the current score.
type HealthScoreSnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ConvertID  uint      `gorm:"not null;index" json:"convert_id"`
	Score      int       `gorm:"not null" json:"score"`
	Factors    FactorMap `gorm:"type:text" json:"factors"`
	ComputedAt time.Time `gorm:"not null;index" json:"computed_at"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Convert *Convert `gorm:"foreignKey:ConvertID" json:"convert,omitempty"`
}
