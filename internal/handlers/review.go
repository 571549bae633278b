package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewRequest struct {
	Score          int    `json:"score" binding:"required,min=1,max=10"`
	Recommendation string `json:"recommendation" binding:"required,oneof=approve decline revise"`
	Comments       string `json:"comments"`
}

type ReviewResponse struct {
	ID             uint      `json:"id"`
	ApplicationID  uint      `json:"applicationId"`
	ReviewerName   string    `json:"reviewerName"`
	Score          int       `json:"score"`
	Recommendation string    `json:"recommendation"`
	Comments       string    `json:"comments"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// CreateReview records an internal review note against an application. One
// reviewer may file multiple reviews; the latest reflects their current view.
func CreateReview(ctx *gin.Context) {
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

	var req ReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	review := models.Review{
		ApplicationID:  app.ID,
		ReviewerID:     currentUser.ID,
		Score:          req.Score,
		Recommendation: req.Recommendation,
		Comments:       req.Comments,
		SubmittedAt:    time.Now(),
	}

	if err := db.DB.Create(&review).Error; err != nil {
		log.Printf("Failed to create review for application %d: %v", applicationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record review"})
		return
	}

	ctx.JSON(http.StatusCreated, ReviewResponse{
		ID:             review.ID,
		ApplicationID:  review.ApplicationID,
		ReviewerName:   currentUser.FullName(),
		Score:          review.Score,
		Recommendation: review.Recommendation,
		Comments:       review.Comments,
		SubmittedAt:    review.SubmittedAt,
	})
}

// ListReviews returns the reviews filed against one application.
func ListReviews(ctx *gin.Context) {
	applicationID, err := utils.GetApplicationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reviews []models.Review

	err = db.DB.Preload("Reviewer").
		Where("application_id = ?", applicationID).
		Order("submitted_at DESC").
		Find(&reviews).Error

	if err != nil {
		log.Printf("Failed to list reviews for application %d: %v", applicationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reviews"})
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))

	for _, review := range reviews {
		response = append(response, ReviewResponse{
			ID:             review.ID,
			ApplicationID:  review.ApplicationID,
			ReviewerName:   review.Reviewer.FullName(),
			Score:          review.Score,
			Recommendation: review.Recommendation,
			Comments:       review.Comments,
			SubmittedAt:    review.SubmittedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
