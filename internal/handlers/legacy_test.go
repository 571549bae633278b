package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestImportLegacyApplications_NormalizesOldRecordShapes(t *testing.T) {
	mock := setupTestDB(t)

	// First record resolves: the opportunity exists and the applicant has an
	// account, so a row is written from the normalized fields.
	opportunityRows := sqlmock.NewRows([]string{"id", "title", "funding_type", "reference"}).
		AddRow(2, "Seed Fund", "grant", "SF-01")
	mock.ExpectQuery(`SELECT \* FROM "funding_opportunities"`).WillReturnRows(opportunityRows)

	userRows := sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "role"}).
		AddRow(3, "alex@example.com", "Alex", "Applicant", "applicant")
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRows)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "applications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	// Second record names an opportunity nobody has, so it is reported back
	// instead of written.
	mock.ExpectQuery(`SELECT \* FROM "funding_opportunities"`).
		WillReturnError(gorm.ErrRecordNotFound)

	body := `{"records": [
		{
			"applicant": {"firstName": "Alex", "lastName": "Applicant", "email": "alex@example.com"},
			"fundingCallTitle": "Seed Fund",
			"formData": {"responses": {"q1": "yes"}},
			"submissionDate": {"_seconds": 1735689600},
			"adminDecision": "approved",
			"allocation": {"allocationAmount": 500}
		},
		{
			"applicant": {"email": "alex@example.com"},
			"fundingCallTitle": "Vanished Fund",
			"formData": {"responses": {}}
		}
	]}`

	ctx, recorder := newTestContext(t, http.MethodPost, body, nil, adminUser())

	ImportLegacyApplications(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response ImportApplicationsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Imported)
	require.Len(t, response.Skipped, 1)
	assert.Contains(t, response.Skipped[0], "Vanished Fund")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportLegacyApplications_SkipsRecordsWithoutAnAccount(t *testing.T) {
	mock := setupTestDB(t)

	opportunityRows := sqlmock.NewRows([]string{"id", "title"}).AddRow(2, "Seed Fund")
	mock.ExpectQuery(`SELECT \* FROM "funding_opportunities"`).WillReturnRows(opportunityRows)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(gorm.ErrRecordNotFound)

	body := `{"records": [
		{"fundingTitle": "Seed Fund", "applicantEmail": "ghost@example.com", "answers": {}}
	]}`

	ctx, recorder := newTestContext(t, http.MethodPost, body, nil, adminUser())

	ImportLegacyApplications(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response ImportApplicationsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Imported)
	require.Len(t, response.Skipped, 1)
	assert.Contains(t, response.Skipped[0], "ghost@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}
