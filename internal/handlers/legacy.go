package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/normalize"
	"github.com/gin-gonic/gin"
)

type ImportApplicationsRequest struct {
	Records []map[string]any `json:"records" binding:"required"`
}

type ImportApplicationsResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// ImportLegacyApplications ingests application documents exported from the
// previous system. Each record passes through the normalize adapter, which
// reconciles the old field aliases and timestamp shapes, and is then matched
// to a funding opportunity by title and to an account by email. Records that
// cannot be matched are reported back, never partially written.
func ImportLegacyApplications(ctx *gin.Context) {
	var req ImportApplicationsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := ImportApplicationsResponse{Skipped: []string{}}

	for i, raw := range req.Records {
		record := normalize.Record(raw)

		title, _ := record["fundingTitle"].(string)
		email, _ := record["applicantEmail"].(string)

		if title == "" {
			response.Skipped = append(response.Skipped, fmt.Sprintf("record %d: no funding title", i))
			continue
		}

		var opportunity models.FundingOpportunity

		if err := db.DB.Where("title = ?", title).First(&opportunity).Error; err != nil {
			response.Skipped = append(response.Skipped, fmt.Sprintf("record %d: no funding opportunity titled %q", i, title))
			continue
		}

		var applicant models.User

		if email == "" || db.DB.Where("email = ?", email).First(&applicant).Error != nil {
			response.Skipped = append(response.Skipped, fmt.Sprintf("record %d: no account for %q", i, email))
			continue
		}

		name, _ := record["applicantName"].(string)
		if name == "" {
			name = applicant.FullName()
		}

		status, _ := record["status"].(string)

		app := models.Application{
			ApplicantID:          applicant.ID,
			ApplicantEmail:       applicant.Email,
			ApplicantName:        name,
			ApplicantRole:        applicant.Role,
			FundingOpportunityID: opportunity.ID,
			FundingTitle:         opportunity.Title,
			FundingType:          opportunity.FundingType,
			ProgrammeReference:   opportunity.Reference,
			Status:               status,
			SubmittedAt:          time.Now(),
		}

		if submittedAt, ok := record["submittedAt"].(*time.Time); ok && submittedAt != nil {
			app.SubmittedAt = *submittedAt
		}

		answers, err := json.Marshal(record["answers"])

		if err != nil {
			response.Skipped = append(response.Skipped, fmt.Sprintf("record %d: unreadable answers", i))
			continue
		}

		app.RawResponses = answers

		if allocation, ok := record["fundAllocation"]; ok && allocation != nil {
			if blob, err := json.Marshal(allocation); err == nil {
				app.FundAllocation = blob
			}
		}

		if err := db.DB.Create(&app).Error; err != nil {
			log.Printf("Failed to import legacy record %d: %v", i, err)
			response.Skipped = append(response.Skipped, fmt.Sprintf("record %d: insert failed", i))
			continue
		}

		response.Imported++
	}

	ctx.JSON(http.StatusOK, response)
}
