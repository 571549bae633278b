package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/application"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/normalize"
	"github.com/MpenduloXulu/TTI-Website/internal/services"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubmitApplicationRequest struct {
	Responses   map[string]string  `json:"responses"`
	Attachments []types.Attachment `json:"attachments"`
}

type ApplicationResponse struct {
	ID                   uint                      `json:"id"`
	ApplicantID          uint                      `json:"applicantId"`
	ApplicantName        string                    `json:"applicantName"`
	ApplicantEmail       string                    `json:"applicantEmail"`
	FundingOpportunityID uint                      `json:"fundingOpportunityId"`
	FundingTitle         string                    `json:"fundingTitle"`
	FundingType          string                    `json:"fundingType"`
	ProgrammeReference   string                    `json:"programmeReference"`
	Responses            []types.StructuredSection `json:"responses"`
	Attachments          []types.Attachment        `json:"attachments"`
	Status               string                    `json:"status"`
	AdminNotes           string                    `json:"adminNotes,omitempty"`
	DecisionBy           string                    `json:"decisionBy,omitempty"`
	DecisionDate         *time.Time                `json:"decisionDate,omitempty"`
	SubmittedAt          time.Time                 `json:"submittedAt"`
	FundAllocation       *types.FundAllocation     `json:"fundAllocation,omitempty"`
}

func applicationResponse(app models.Application) ApplicationResponse {
	var responses []types.StructuredSection
	if len(app.Responses) > 0 {
		if err := json.Unmarshal(app.Responses, &responses); err != nil {
			log.Printf("Failed to decode responses for application %d: %v", app.ID, err)
		}
	}

	var attachments []types.Attachment
	if len(app.Attachments) > 0 {
		if err := json.Unmarshal(app.Attachments, &attachments); err != nil {
			log.Printf("Failed to decode attachments for application %d: %v", app.ID, err)
		}
	}

	var allocation *types.FundAllocation
	if len(app.FundAllocation) > 0 {
		allocation = &types.FundAllocation{}
		if err := json.Unmarshal(app.FundAllocation, allocation); err != nil {
			log.Printf("Failed to decode fund allocation for application %d: %v", app.ID, err)
			allocation = nil
		}
	}

	return ApplicationResponse{
		ID:                   app.ID,
		ApplicantID:          app.ApplicantID,
		ApplicantName:        app.ApplicantName,
		ApplicantEmail:       app.ApplicantEmail,
		FundingOpportunityID: app.FundingOpportunityID,
		FundingTitle:         app.FundingTitle,
		FundingType:          app.FundingType,
		ProgrammeReference:   app.ProgrammeReference,
		Responses:            responses,
		Attachments:          attachments,
		Status:               normalize.Decision(app.Status, app.AdminDecision),
		AdminNotes:           app.AdminNotes,
		DecisionBy:           app.DecisionBy,
		DecisionDate:         app.DecisionDate,
		SubmittedAt:          app.SubmittedAt,
		FundAllocation:       allocation,
	}
}

// SubmitApplication validates the caller's answers and documents against the
// opportunity's declared schema and records the submission. The draft backing
// the submission is discarded afterwards; a failed discard never fails the
// submission itself.
func SubmitApplication(ctx *gin.Context) {
	opportunityID, err := utils.GetOpportunityID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitApplicationRequest

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

	sections := application.SectionsOrDefault(opportunity.ApplicationAttributes)
	responses := application.OverlayDraft(application.InitialResponses(sections), req.Responses)

	if err := application.ValidateResponses(sections, responses); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirements := application.DocumentRequirements(application.DocumentLabels(opportunity.RequiredDocuments))

	if err := application.ValidateDocuments(requirements, req.Attachments); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()

	app := models.Application{
		ApplicantID:          currentUser.ID,
		ApplicantEmail:       currentUser.Email,
		ApplicantName:        currentUser.FullName(),
		ApplicantRole:        currentUser.Role,
		FundingOpportunityID: opportunity.ID,
		FundingTitle:         opportunity.Title,
		FundingType:          opportunity.FundingType,
		ProgrammeReference:   opportunity.Reference,
		Status:               types.StatusSubmitted,
		SubmittedAt:          now,
	}

	if app.Responses, err = json.Marshal(application.StructureResponses(sections, responses)); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record application"})
		return
	}

	if app.RawResponses, err = json.Marshal(responses); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record application"})
		return
	}

	if app.ApplicationAttributes, err = json.Marshal(sections); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record application"})
		return
	}

	if req.Attachments == nil {
		req.Attachments = []types.Attachment{}
	}

	if app.Attachments, err = json.Marshal(req.Attachments); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record application"})
		return
	}

	if err := db.DB.Create(&app).Error; err != nil {
		log.Printf("Failed to create application for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	// The submission is already durable at this point, so a stuck draft only
	// costs a stale row. The delete must be a hard one: a tombstone would
	// keep occupying the (user, opportunity) unique index and shadow the
	// next saved draft.
	err = db.DB.Unscoped().
		Where("user_id = ? AND funding_opportunity_id = ?", currentUser.ID, opportunityID).
		Delete(&models.ApplicationDraft{}).Error

	if err != nil {
		log.Printf("Failed to discard draft after submission for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
	}

	if err := services.SendApplicationSubmittedNotification(app); err != nil {
		log.Printf("Failed to send submission notification for application %d: %v", app.ID, err)
	}

	notifyAdmins("application_submitted", "New application",
		fmt.Sprintf("%s applied for %s", app.ApplicantName, app.FundingTitle))

	BroadcastDashboardRefresh()

	ctx.JSON(http.StatusCreated, applicationResponse(app))
}

// ListApplications returns the caller's own applications, or every
// application for admins, newest submission first.
func ListApplications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Order("submitted_at DESC")

	if !utils.IsAdmin(currentUser) {
		query = query.Where("applicant_id = ?", currentUser.ID)
	}

	var apps []models.Application

	if err := query.Find(&apps).Error; err != nil {
		log.Printf("Failed to list applications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	response := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		response = append(response, applicationResponse(app))
	}

	ctx.JSON(http.StatusOK, response)
}

// GetApplication returns one application to its owner or to an admin.
func GetApplication(ctx *gin.Context) {
	applicationID, err := utils.GetApplicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var app models.Application

	if err := db.DB.First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			log.Printf("Failed to fetch application %d: %v", applicationID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	if !utils.IsAdmin(currentUser) && app.ApplicantID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	ctx.JSON(http.StatusOK, applicationResponse(app))
}

type DecisionRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// DecideApplication records an approve or decline verdict. Decisions may be
// recorded from any prior state, so a verdict can be revised.
func DecideApplication(ctx *gin.Context) {
	applicationID, err := utils.GetApplicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req DecisionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision := normalize.Status(req.Status)

	if decision != types.StatusApproved && decision != types.StatusDeclined {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Decision must be approved or declined"})
		return
	}

	var app models.Application

	if err := db.DB.First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			log.Printf("Failed to fetch application %d: %v", applicationID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	now := time.Now()

	updates := map[string]any{
		"status":         decision,
		"admin_decision": decision,
		"admin_notes":    req.Notes,
		"decision_by":    currentUser.FullName(),
		"decision_date":  now,
	}

	if err := db.DB.Model(&app).Updates(updates).Error; err != nil {
		log.Printf("Failed to record decision for application %d: %v", applicationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record decision"})
		return
	}

	app.Status = decision
	app.AdminDecision = decision
	app.AdminNotes = req.Notes
	app.DecisionBy = currentUser.FullName()
	app.DecisionDate = &now

	if err := services.SendDecisionNotification(app, decision); err != nil {
		log.Printf("Failed to send decision notification for application %d: %v", app.ID, err)
	}

	message := fmt.Sprintf("Your application for %s was %s", app.FundingTitle, decision)
	notifyUser(app.ApplicantID, "application_decision", "Application decision", message)

	BroadcastDashboardRefresh()

	ctx.JSON(http.StatusOK, applicationResponse(app))
}

type AllocationRequest struct {
	Amount any    `json:"amount"`
	Notes  string `json:"notes"`
}

// parseAmount accepts the number or numeric-string shapes clients send and
// rejects everything else.
func parseAmount(raw any) (float64, bool) {
	switch value := raw.(type) {
	case float64:
		return value, true
	case json.Number:
		parsed, err := value.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// SaveAllocation records or revises the award against an approved
// application. The amount is validated before any database work, and an
// application whose canonical status is not approved cannot hold an award.
func SaveAllocation(ctx *gin.Context) {
	applicationID, err := utils.GetApplicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req AllocationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, ok := parseAmount(req.Amount)

	if !ok || amount <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Enter a valid allocation amount."})
		return
	}

	var app models.Application

	if err := db.DB.First(&app, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			log.Printf("Failed to fetch application %d: %v", applicationID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve application"})
		}
		return
	}

	if normalize.Decision(app.Status, app.AdminDecision) != types.StatusApproved {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Only approved applications can receive an allocation"})
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)

	allocation := types.FundAllocation{
		AllocationAmount: amount,
		AllocationNotes:  req.Notes,
		AllocatedBy:      currentUser.FullName(),
		AllocatedAtIso:   now,
		UpdatedAt:        now,
	}

	// Revisions keep the original allocation timestamp.
	if len(app.FundAllocation) > 0 {
		var existing types.FundAllocation
		if err := json.Unmarshal(app.FundAllocation, &existing); err == nil && existing.AllocatedAtIso != "" {
			allocation.AllocatedAtIso = existing.AllocatedAtIso
		}
	}

	blob, err := json.Marshal(allocation)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save allocation"})
		return
	}

	if err := db.DB.Model(&app).Update("fund_allocation", blob).Error; err != nil {
		log.Printf("Failed to save allocation for application %d: %v", applicationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save allocation"})
		return
	}

	app.FundAllocation = blob

	message := fmt.Sprintf("An allocation of %.2f was recorded for your application to %s", amount, app.FundingTitle)
	notifyUser(app.ApplicantID, "fund_allocation", "Funding allocated", message)

	BroadcastDashboardRefresh()

	ctx.JSON(http.StatusOK, applicationResponse(app))
}
