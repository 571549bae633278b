package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MpenduloXulu/TTI-Website/db"
	"github.com/MpenduloXulu/TTI-Website/internal/application"
	"github.com/MpenduloXulu/TTI-Website/internal/models"
	"github.com/MpenduloXulu/TTI-Website/internal/storage"
	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/MpenduloXulu/TTI-Website/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blob is the shared document store. main wires it before the router starts.
var Blob *storage.BlobStore

func SetBlobStore(store *storage.BlobStore) {
	Blob = store
}

const maxAttachmentSize = 15 << 20 // 15 MiB per file

// UploadAttachments stores one or more supporting documents for the caller's
// draft on an opportunity. Files for a requirement slot that already holds an
// attachment replace it; the superseded blob is deleted best-effort.
func UploadAttachments(ctx *gin.Context) {
	if Blob == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	}

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

	docType := ctx.PostForm("docType")

	if docType == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "docType is required"})
		return
	}

	form, err := ctx.MultipartForm()

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload request"})
		return
	}

	files := form.File["files"]

	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	docLabel := ctx.PostForm("docLabel")

	if docLabel == "" {
		var opportunity models.FundingOpportunity
		if err := db.DB.First(&opportunity, opportunityID).Error; err == nil {
			for _, requirement := range application.DocumentRequirements(application.DocumentLabels(opportunity.RequiredDocuments)) {
				if requirement.ID == docType {
					docLabel = requirement.Label
					break
				}
			}
		}
	}

	uploaded := make([]types.Attachment, 0, len(files))

	// Uploads run one file at a time so a failure reports the offending
	// filename instead of a partial batch.
	for _, header := range files {
		if header.Size > maxAttachmentSize {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s exceeds the upload size limit", header.Filename)})
			return
		}

		file, err := header.Open()

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read %s", header.Filename)})
			return
		}

		data, err := io.ReadAll(file)
		file.Close()

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read %s", header.Filename)})
			return
		}

		now := time.Now()
		key := storage.ObjectKey(currentUser.ID, uint(opportunityID), header.Filename, now)
		contentType := header.Header.Get("Content-Type")

		url, err := Blob.Upload(ctx.Request.Context(), key, data, contentType)

		if err != nil {
			log.Printf("Failed to upload %s for user %d: %v", header.Filename, currentUser.ID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload %s", header.Filename)})
			return
		}

		uploaded = append(uploaded, types.Attachment{
			Name:        header.Filename,
			URL:         url,
			Path:        key,
			Size:        header.Size,
			ContentType: contentType,
			Base64:      base64.StdEncoding.EncodeToString(data),
			UploadedAt:  now.UTC().Format(time.RFC3339),
			DocType:     docType,
			DocLabel:    docLabel,
		})
	}

	attachments, err := mergeDraftAttachments(ctx, currentUser.ID, uint(opportunityID), docType, uploaded)

	if err != nil {
		log.Printf("Failed to persist attachments for user %d opportunity %d: %v", currentUser.ID, opportunityID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save uploaded documents"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

// mergeDraftAttachments swaps the uploads for a requirement slot into the
// draft's attachment list and upserts the draft. Replaced blobs are removed
// from storage after the database write, failures logged only.
func mergeDraftAttachments(ctx *gin.Context, userID, opportunityID uint, docType string, uploaded []types.Attachment) ([]types.Attachment, error) {
	var draft models.ApplicationDraft
	var existing []types.Attachment

	err := db.DB.Where("user_id = ? AND funding_opportunity_id = ?", userID, opportunityID).
		First(&draft).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if len(draft.Attachments) > 0 {
		if err := json.Unmarshal(draft.Attachments, &existing); err != nil {
			log.Printf("Failed to decode draft attachments for user %d opportunity %d: %v", userID, opportunityID, err)
			existing = nil
		}
	}

	var superseded []string
	merged := make([]types.Attachment, 0, len(existing)+len(uploaded))

	for _, attachment := range existing {
		if attachment.DocType == docType {
			if attachment.Path != "" {
				superseded = append(superseded, attachment.Path)
			}
			continue
		}
		merged = append(merged, attachment)
	}

	merged = append(merged, uploaded...)

	draft.UserID = userID
	draft.FundingOpportunityID = opportunityID

	if draft.Responses == nil {
		draft.Responses = []byte("{}")
	}

	if draft.Attachments, err = json.Marshal(merged); err != nil {
		return nil, err
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "funding_opportunity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"attachments",
			"updated_at",
		}),
	}).Create(&draft).Error

	if err != nil {
		return nil, err
	}

	for _, path := range superseded {
		if err := Blob.Delete(ctx.Request.Context(), path); err != nil {
			log.Printf("Failed to delete superseded attachment %s: %v", path, err)
		}
	}

	return merged, nil
}

type DeleteAttachmentRequest struct {
	Path string `json:"path" binding:"required"`
}

// DeleteAttachment removes one uploaded document blob and drops it from the
// caller's draft. Only paths under the caller's own prefix are accepted.
func DeleteAttachment(ctx *gin.Context) {
	if Blob == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req DeleteAttachmentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownPrefix := fmt.Sprintf("applications/%d/", currentUser.ID)

	if !strings.HasPrefix(req.Path, ownPrefix) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete another user's document"})
		return
	}

	if err := Blob.Delete(ctx.Request.Context(), req.Path); err != nil {
		log.Printf("Failed to delete attachment %s: %v", req.Path, err)
	}

	var drafts []models.ApplicationDraft

	if err := db.DB.Where("user_id = ?", currentUser.ID).Find(&drafts).Error; err != nil {
		log.Printf("Failed to load drafts for attachment cleanup, user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusOK, gin.H{"message": "Document removed"})
		return
	}

	for _, draft := range drafts {
		var attachments []types.Attachment

		if len(draft.Attachments) == 0 {
			continue
		}

		if err := json.Unmarshal(draft.Attachments, &attachments); err != nil {
			continue
		}

		kept := make([]types.Attachment, 0, len(attachments))
		for _, attachment := range attachments {
			if attachment.Path != req.Path {
				kept = append(kept, attachment)
			}
		}

		if len(kept) == len(attachments) {
			continue
		}

		blob, err := json.Marshal(kept)

		if err != nil {
			continue
		}

		if err := db.DB.Model(&models.ApplicationDraft{}).Where("id = ?", draft.ID).
			Update("attachments", blob).Error; err != nil {
			log.Printf("Failed to update draft %d after attachment delete: %v", draft.ID, err)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Document removed"})
}
