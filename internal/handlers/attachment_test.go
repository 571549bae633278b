package handlers

import (
	"net/http"
	"testing"

	"github.com/MpenduloXulu/TTI-Website/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func withBlobStore(t *testing.T) {
	t.Helper()

	previous := Blob
	Blob = &storage.BlobStore{}

	t.Cleanup(func() {
		Blob = previous
	})
}

func TestUploadAttachments_RequiresDocType(t *testing.T) {
	withBlobStore(t)
	mock := setupTestDB(t)

	params := gin.Params{{Key: "opportunity_id", Value: "2"}}
	ctx, recorder := newTestContext(t, http.MethodPost, "", params, applicantUser())

	UploadAttachments(ctx)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "docType is required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAttachment_RejectsForeignPath(t *testing.T) {
	withBlobStore(t)
	mock := setupTestDB(t)

	// Applicant 3 trying to delete under applicant 9's prefix
	body := `{"path": "applications/9/2/123-taxes.pdf"}`
	ctx, recorder := newTestContext(t, http.MethodDelete, body, nil, applicantUser())

	DeleteAttachment(ctx)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAttachment_RequiresConfiguredStorage(t *testing.T) {
	previous := Blob
	Blob = nil
	t.Cleanup(func() { Blob = previous })

	ctx, recorder := newTestContext(t, http.MethodDelete, `{"path": "applications/3/2/x"}`, nil, applicantUser())

	DeleteAttachment(ctx)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
