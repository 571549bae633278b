package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/application"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OpportunityRequest struct {
	Title                 string          `json:"title" binding:"required"`
	FundingType           string          `json:"fundingType"`
	TotalBudget           float64         `json:"totalBudget"`
	Reference             string          `json:"reference"`
	Description           string          `json:"description"`
	OpeningDate           *time.Time      `json:"openingDate"`
	ClosingDate           *time.Time      `json:"closingDate"`
	EligibilityCriteria   []string        `json:"eligibilityCriteria"`
	RequiredDocuments     []string        `json:"requiredDocuments"`
	ApplicationAttributes []types.Section `json:"applicationAttributes"`
}

type OpportunityResponse struct {
	ID                    uint            `json:"id"`
	Title                 string          `json:"title"`
	FundingType           string          `json:"fundingType"`
	TotalBudget           float64         `json:"totalBudget"`
	Reference             string          `json:"reference"`
	Description           string          `json:"description"`
	OpeningDate           *time.Time      `json:"openingDate"`
	ClosingDate           *time.Time      `json:"closingDate"`
	EligibilityCriteria   []string        `json:"eligibilityCriteria"`
	RequiredDocuments     []string        `json:"requiredDocuments"`
	ApplicationAttributes []types.Section `json:"applicationAttributes"`
	Availability          string          `json:"availability"`
	CreatedAt             time.Time       `json:"createdAt"`
}

func opportunityResponse(opportunity models.FundingOpportunity, now time.Time) OpportunityResponse {
	var criteria []string
	if len(opportunity.EligibilityCriteria) > 0 {
		if err := json.Unmarshal(opportunity.EligibilityCriteria, &criteria); err != nil {
			log.Printf("Failed to decode eligibility criteria for opportunity %d: %v", opportunity.ID, err)
		}
	}

	var sections []types.Section
	if len(opportunity.ApplicationAttributes) > 0 {
		if err := json.Unmarshal(opportunity.ApplicationAttributes, &sections); err != nil {
			log.Printf("Failed to decode application attributes for opportunity %d: %v", opportunity.ID, err)
		}
	}

	// Requirements are resolved through the same fallback the submission
	// pipeline applies, so clients see the slots that will be enforced.
	requirements := application.DocumentRequirements(application.DocumentLabels(opportunity.RequiredDocuments))
	labels := make([]string, 0, len(requirements))
	for _, requirement := range requirements {
		labels = append(labels, requirement.Label)
	}

	return OpportunityResponse{
		ID:                    opportunity.ID,
		Title:                 opportunity.Title,
		FundingType:           opportunity.FundingType,
		TotalBudget:           opportunity.TotalBudget,
		Reference:             opportunity.Reference,
		Description:           opportunity.Description,
		OpeningDate:           opportunity.OpeningDate,
		ClosingDate:           opportunity.ClosingDate,
		EligibilityCriteria:   criteria,
		RequiredDocuments:     labels,
		ApplicationAttributes: sections,
		Availability:          utils.DeriveAvailability(opportunity.OpeningDate, opportunity.ClosingDate, now),
		CreatedAt:             opportunity.CreatedAt,
	}
}

func ListOpportunities(ctx *gin.Context) {
	var opportunities []models.FundingOpportunity

	if err := db.DB.Order("created_at DESC").Find(&opportunities).Error; err != nil {
		log.Printf("Failed to list opportunities: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve funding opportunities"})
		return
	}

	now := time.Now()
	response := make([]OpportunityResponse, 0, len(opportunities))

	for _, opportunity := range opportunities {
		response = append(response, opportunityResponse(opportunity, now))
	}

	// Open first, then upcoming, then closed; soonest closing wins inside a
	// group, opportunities without a closing date sink to the end of it.
	sort.SliceStable(response, func(i, j int) bool {
		rankI := utils.AvailabilityRank(response[i].Availability)
		rankJ := utils.AvailabilityRank(response[j].Availability)
		if rankI != rankJ {
			return rankI < rankJ
		}
		switch {
		case response[i].ClosingDate == nil:
			return false
		case response[j].ClosingDate == nil:
			return true
		default:
			return response[i].ClosingDate.Before(*response[j].ClosingDate)
		}
	})

	ctx.JSON(http.StatusOK, response)
}

func GetOpportunity(ctx *gin.Context) {
	opportunityID, err := utils.GetOpportunityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opportunity models.FundingOpportunity

	if err := db.DB.First(&opportunity, opportunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Funding opportunity not found"})
		} else {
			log.Printf("Failed to fetch opportunity %d: %v", opportunityID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve funding opportunity"})
		}
		return
	}

	ctx.JSON(http.StatusOK, opportunityResponse(opportunity, time.Now()))
}

func CreateOpportunity(ctx *gin.Context) {
	var req OpportunityRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	opportunity := models.FundingOpportunity{
		Title:       req.Title,
		FundingType: req.FundingType,
		TotalBudget: req.TotalBudget,
		Reference:   req.Reference,
		Description: req.Description,
		OpeningDate: req.OpeningDate,
		ClosingDate: req.ClosingDate,
		CreatedByID: currentUser.ID,
	}

	if opportunity.EligibilityCriteria, err = json.Marshal(req.EligibilityCriteria); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eligibility criteria"})
		return
	}

	if opportunity.RequiredDocuments, err = json.Marshal(req.RequiredDocuments); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid required documents"})
		return
	}

	if opportunity.ApplicationAttributes, err = json.Marshal(req.ApplicationAttributes); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application attributes"})
		return
	}

	if err := db.DB.Create(&opportunity).Error; err != nil {
		log.Printf("Failed to create opportunity: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create funding opportunity"})
		return
	}

	ctx.JSON(http.StatusCreated, opportunityResponse(opportunity, time.Now()))
}

func UpdateOpportunity(ctx *gin.Context) {
	opportunityID, err := utils.GetOpportunityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req OpportunityRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opportunity models.FundingOpportunity

	if err := db.DB.First(&opportunity, opportunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Funding opportunity not found"})
		} else {
			log.Printf("Failed to fetch opportunity %d: %v", opportunityID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve funding opportunity"})
		}
		return
	}

	opportunity.Title = req.Title
	opportunity.FundingType = req.FundingType
	opportunity.TotalBudget = req.TotalBudget
	opportunity.Reference = req.Reference
	opportunity.Description = req.Description
	opportunity.OpeningDate = req.OpeningDate
	opportunity.ClosingDate = req.ClosingDate

	if opportunity.EligibilityCriteria, err = json.Marshal(req.EligibilityCriteria); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid eligibility criteria"})
		return
	}

	if opportunity.RequiredDocuments, err = json.Marshal(req.RequiredDocuments); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid required documents"})
		return
	}

	if opportunity.ApplicationAttributes, err = json.Marshal(req.ApplicationAttributes); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application attributes"})
		return
	}

	if err := db.DB.Save(&opportunity).Error; err != nil {
		log.Printf("Failed to update opportunity %d: %v", opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update funding opportunity"})
		return
	}

	ctx.JSON(http.StatusOK, opportunityResponse(opportunity, time.Now()))
}

func DeleteOpportunity(ctx *gin.Context) {
	opportunityID, err := utils.GetOpportunityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var opportunity models.FundingOpportunity

	if err := db.DB.First(&opportunity, opportunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Funding opportunity not found"})
		} else {
			log.Printf("Failed to fetch opportunity %d: %v", opportunityID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve funding opportunity"})
		}
		return
	}

	if err := db.DB.Delete(&opportunity).Error; err != nil {
		log.Printf("Failed to delete opportunity %d: %v", opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete funding opportunity"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
