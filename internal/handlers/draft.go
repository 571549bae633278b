package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/application"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DraftRequest struct {
	Responses   map[string]string  `json:"responses"`
	Attachments []types.Attachment `json:"attachments"`
}

type DraftResponse struct {
	FundingOpportunityID uint               `json:"fundingOpportunityId"`
	Responses            map[string]string  `json:"responses"`
	Attachments          []types.Attachment `json:"attachments"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// SaveDraft upserts the caller's draft for one opportunity. Each applicant
// holds at most one draft per opportunity; a second save overwrites the first.
func SaveDraft(ctx *gin.Context) {
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

	var req DraftRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Responses == nil {
		req.Responses = map[string]string{}
	}

	if req.Attachments == nil {
		req.Attachments = []types.Attachment{}
	}

	draft := models.ApplicationDraft{
		UserID:               currentUser.ID,
		FundingOpportunityID: uint(opportunityID),
	}

	if draft.Responses, err = json.Marshal(req.Responses); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft responses"})
		return
	}

	if draft.Attachments, err = json.Marshal(req.Attachments); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft attachments"})
		return
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "funding_opportunity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"responses",
			"attachments",
			"updated_at",
		}),
	}).Create(&draft).Error

	if err != nil {
		log.Printf("Failed to save draft for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Draft saved"})
}

// LoadDraft returns the caller's saved draft for one opportunity, with the
// declared form schema overlaid so removed fields still surface their values.
func LoadDraft(ctx *gin.Context) {
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

	var draft models.ApplicationDraft

	err = db.DB.Where("user_id = ? AND funding_opportunity_id = ?", currentUser.ID, opportunityID).
		First(&draft).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusOK, gin.H{"draft": nil})
		} else {
			log.Printf("Failed to load draft for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		}
		return
	}

	var saved map[string]string
	if len(draft.Responses) > 0 {
		if err := json.Unmarshal(draft.Responses, &saved); err != nil {
			log.Printf("Failed to decode draft responses for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		}
	}

	var attachments []types.Attachment
	if len(draft.Attachments) > 0 {
		if err := json.Unmarshal(draft.Attachments, &attachments); err != nil {
			log.Printf("Failed to decode draft attachments for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		}
	}

	if attachments == nil {
		attachments = []types.Attachment{}
	}

	var opportunity models.FundingOpportunity
	responses := saved

	if err := db.DB.First(&opportunity, opportunityID).Error; err == nil {
		sections := application.SectionsOrDefault(opportunity.ApplicationAttributes)
		responses = application.OverlayDraft(application.InitialResponses(sections), saved)
	}

	if responses == nil {
		responses = map[string]string{}
	}

	ctx.JSON(http.StatusOK, gin.H{"draft": DraftResponse{
		FundingOpportunityID: draft.FundingOpportunityID,
		Responses:            responses,
		Attachments:          attachments,
		UpdatedAt:            draft.UpdatedAt,
	}})
}

// DeleteDraft discards the caller's draft. Deleting a draft that does not
// exist is not an error. The row is removed outright rather than tombstoned,
// otherwise it would keep holding the (user, opportunity) unique index and a
// later save would update a row no load can see.
func DeleteDraft(ctx *gin.Context) {
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

	err = db.DB.Unscoped().
		Where("user_id = ? AND funding_opportunity_id = ?", currentUser.ID, opportunityID).
		Delete(&models.ApplicationDraft{}).Error

	if err != nil {
		log.Printf("Failed to delete draft for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to discard draft"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}
