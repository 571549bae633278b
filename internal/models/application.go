package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Application struct {
	gorm.Model

	ApplicantID    uint `gorm:"not null;index"`
	ApplicantEmail string
	ApplicantName  string
	ApplicantRole  string

	FundingOpportunityID uint `gorm:"not null;index"`
	FundingTitle         string
	FundingType          string
	ProgrammeReference   string

	Responses             datatypes.JSON `gorm:"type:jsonb"` // ordered section/field/value structure
	RawResponses          datatypes.JSON `gorm:"type:jsonb"` // flat fieldId -> value fallback
	ApplicationAttributes datatypes.JSON `gorm:"type:jsonb"` // schema snapshot at submission time
	Attachments           datatypes.JSON `gorm:"type:jsonb"`

	Status        string `gorm:"not null;default:submitted"`
	AdminDecision string
	AdminNotes    string
	DecisionBy    string
	DecisionDate  *time.Time
	SubmittedAt   time.Time `gorm:"not null;index"`

	FundAllocation datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Applicant          User               `gorm:"foreignKey:ApplicantID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	FundingOpportunity FundingOpportunity `gorm:"foreignKey:FundingOpportunityID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reviews            []Review           `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
