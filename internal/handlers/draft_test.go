package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDraft_UpsertsOnUserOpportunityPair(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "application_drafts" .* ON CONFLICT \("user_id","funding_opportunity_id"\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	body := `{"responses": {"q1": "draft answer"}, "attachments": []}`
	params := gin.Params{{Key: "opportunity_id", Value: "2"}}
	ctx, recorder := newTestContext(t, http.MethodPut, body, params, applicantUser())

	SaveDraft(ctx)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDraft_MissingDraftIsNotAnError(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "application_drafts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	params := gin.Params{{Key: "opportunity_id", Value: "2"}}
	ctx, recorder := newTestContext(t, http.MethodGet, "", params, applicantUser())

	LoadDraft(ctx)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"draft": null}`, recorder.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDraft_OverlaysSchemaSlots(t *testing.T) {
	mock := setupTestDB(t)

	draftRows := sqlmock.NewRows([]string{"id", "user_id", "funding_opportunity_id", "responses", "attachments"}).
		AddRow(4, 3, 2, `{"q1":"kept","stray":"carried"}`, `[]`)

	mock.ExpectQuery(`SELECT \* FROM "application_drafts"`).WillReturnRows(draftRows)

	attrs := `[{"id":"s1","title":"Section","fields":[{"id":"q1","label":"Q1","inputType":"text"},{"id":"q2","label":"Q2","inputType":"text"}]}]`
	opportunityRows := sqlmock.NewRows([]string{"id", "title", "application_attributes"}).
		AddRow(2, "Seed Fund", attrs)

	mock.ExpectQuery(`SELECT \* FROM "funding_opportunities"`).WillReturnRows(opportunityRows)

	params := gin.Params{{Key: "opportunity_id", Value: "2"}}
	ctx, recorder := newTestContext(t, http.MethodGet, "", params, applicantUser())

	LoadDraft(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Draft DraftResponse `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))

	// Saved values win, declared-but-unanswered fields get empty slots, and
	// stray keys for removed fields survive.
	assert.Equal(t, "kept", payload.Draft.Responses["q1"])
	assert.Equal(t, "", payload.Draft.Responses["q2"])
	assert.Equal(t, "carried", payload.Draft.Responses["stray"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDraft_IsIdempotent(t *testing.T) {
	mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "application_drafts"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	params := gin.Params{{Key: "opportunity_id", Value: "2"}}
	ctx, recorder := newTestContext(t, http.MethodDelete, "", params, applicantUser())

	DeleteDraft(ctx)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraft_ResaveAfterDeleteRoundTrips(t *testing.T) {
	// A deleted draft must release its (user, opportunity) slot entirely. If
	// the delete left a tombstone behind, the resave's upsert would write
	// into a row the load can never see and the draft would silently vanish.
	mock := setupTestDB(t)

	params := gin.Params{{Key: "opportunity_id", Value: "2"}}

	// Initial save
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "application_drafts" .* ON CONFLICT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectCommit()

	ctx, recorder := newTestContext(t, http.MethodPut, `{"responses": {"q1": "first"}}`, params, applicantUser())
	SaveDraft(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Discard removes the row outright, not a soft delete
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "application_drafts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx, recorder = newTestContext(t, http.MethodDelete, "", params, applicantUser())
	DeleteDraft(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Resave lands in a fresh row
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "application_drafts" .* ON CONFLICT`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	ctx, recorder = newTestContext(t, http.MethodPut, `{"responses": {"q1": "second"}}`, params, applicantUser())
	SaveDraft(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)

	// And the load sees it
	draftRows := sqlmock.NewRows([]string{"id", "user_id", "funding_opportunity_id", "responses", "attachments"}).
		AddRow(5, 3, 2, `{"q1":"second"}`, `[]`)
	mock.ExpectQuery(`SELECT \* FROM "application_drafts"`).WillReturnRows(draftRows)

	attrs := `[{"id":"s1","title":"Section","fields":[{"id":"q1","label":"Q1","inputType":"text"}]}]`
	mock.ExpectQuery(`SELECT \* FROM "funding_opportunities"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "application_attributes"}).
			AddRow(2, "Seed Fund", attrs))

	ctx, recorder = newTestContext(t, http.MethodGet, "", params, applicantUser())
	LoadDraft(ctx)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Draft *DraftResponse `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.NotNil(t, payload.Draft)
	assert.Equal(t, "second", payload.Draft.Responses["q1"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
