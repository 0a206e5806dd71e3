package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harshshukla07/SwiftCV/internal/resume"
)

// User represents an account.
type User struct {
	gorm.Model
	Name         string   `gorm:"size:128"`
	Email        string   `gorm:"uniqueIndex;size:255"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume represents a stored resume. The owner is fixed at creation; Title and
// Public live in columns because duplication and the public read path query on
// them, the rest of the document is a single JSONB value.
type Resume struct {
	gorm.Model
	UserID      uint                                `gorm:"index"`
	User        User                                `gorm:"constraint:OnDelete:CASCADE"`
	Title       string                              `gorm:"size:255"`
	Public      bool                                `gorm:"default:false"`
	Template    string                              `gorm:"size:64"`
	AccentColor string                              `gorm:"size:32"`
	Document    datatypes.JSONType[resume.Document] `gorm:"type:jsonb"`
}
