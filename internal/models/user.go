package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string
	LastName     string
	Role         string `gorm:"not null;default:applicant"` // "applicant" or "admin"
	Phone        string
	Organization string
	Bio          string

	ResetToken       string `gorm:"index"`
	ResetTokenExpiry *time.Time

	// Relationships
	Applications  []Application      `gorm:"foreignKey:ApplicantID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Drafts        []ApplicationDraft `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// FullName is the display name used on submissions and admin listings.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
