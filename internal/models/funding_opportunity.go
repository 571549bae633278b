package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FundingOpportunity struct {
	gorm.Model

	Title       string `gorm:"not null"`
	FundingType string
	TotalBudget float64
	Reference   string
	Description string
	OpeningDate *time.Time
	ClosingDate *time.Time

	EligibilityCriteria   datatypes.JSON `gorm:"type:jsonb"` // ordered list of strings
	RequiredDocuments     datatypes.JSON `gorm:"type:jsonb"` // ordered list of labels
	ApplicationAttributes datatypes.JSON `gorm:"type:jsonb"` // ordered list of sections

	CreatedByID uint `gorm:"index"`

	// Relationships
	CreatedBy    User               `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Applications []Application      `gorm:"foreignKey:FundingOpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Drafts       []ApplicationDraft `gorm:"foreignKey:FundingOpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
