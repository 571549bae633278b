package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model

	UserID  uint   `gorm:"not null;index"`
	Type    string `gorm:"not null"` // e.g. "application_submitted", "decision_recorded"
	Title   string
	Message string
	IsRead  bool `gorm:"default:false"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
