package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationDraft is the single in-progress application a user keeps per
// opportunity. The composite unique index stands in for the uid_opportunityId
// document key.
type ApplicationDraft struct {
	gorm.Model

	UserID               uint `gorm:"not null;uniqueIndex:idx_draft_user_opportunity"`
	FundingOpportunityID uint `gorm:"not null;uniqueIndex:idx_draft_user_opportunity"`

	Responses   datatypes.JSON `gorm:"type:jsonb"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User               User               `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	FundingOpportunity FundingOpportunity `gorm:"foreignKey:FundingOpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
