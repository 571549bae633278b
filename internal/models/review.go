package models

import (
	"time"

	"gorm.io/gorm"
)

type Review struct {
	gorm.Model

	ApplicationID  uint `gorm:"not null;index"`
	ReviewerID     uint `gorm:"not null;index"`
	Score          int
	Recommendation string // e.g. "approve", "decline", "revise"
	Comments       string
	SubmittedAt    time.Time `gorm:"not null"`

	// Relationships
	Application Application `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reviewer    User        `gorm:"foreignKey:ReviewerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
