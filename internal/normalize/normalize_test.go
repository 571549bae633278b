package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "pending"},
		{"approved", "approved"},
		{"declined", "declined"},
		{"rejected", "declined"},
		{"under-review", "pending"},
		{"anything-else", "pending"},
		{"APPROVED", "pending"}, // taxonomy is case-sensitive by design of the source records
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.raw), "Status(%q)", tt.raw)
	}
}

func TestStatusIsTotal(t *testing.T) {
	valid := map[string]bool{"pending": true, "approved": true, "declined": true}
	for _, raw := range []string{"", "approved", "rejected", "declined", "garbage", "submitted", "draft"} {
		assert.True(t, valid[Status(raw)], "Status(%q) escaped the taxonomy", raw)
	}
}

func TestDecision(t *testing.T) {
	assert.Equal(t, "approved", Decision("approved", ""))
	assert.Equal(t, "declined", Decision("", "rejected"))
	assert.Equal(t, "pending", Decision("", "pending"))
	assert.Equal(t, "pending", Decision("", ""))
	// "status" wins when both are present
	assert.Equal(t, "declined", Decision("declined", "approved"))
}

func TestDate(t *testing.T) {
	assert.Nil(t, Date(nil))
	assert.Nil(t, Date("not-a-date"))
	assert.Nil(t, Date(""))
	assert.Nil(t, Date(map[string]any{"nanos": 12}))
	assert.Nil(t, Date(struct{}{}))

	got := Date(map[string]any{"seconds": float64(1700000000)})
	require.NotNil(t, got)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *got)

	got = Date(map[string]any{"_seconds": float64(1700000000)})
	require.NotNil(t, got)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *got)

	got = Date("2024-01-01")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *got)

	got = Date("2024-01-01T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), *got)

	native := time.Date(2023, 5, 4, 3, 2, 1, 0, time.UTC)
	got = Date(native)
	require.NotNil(t, got)
	assert.Equal(t, native, *got)

	assert.Nil(t, Date(time.Time{}))
}

func TestRecordAdaptsLegacyShapes(t *testing.T) {
	record := map[string]any{
		"applicationId": "app-17",
		"applicant": map[string]any{
			"firstName": "Nomsa",
			"lastName":  "Dlamini",
			"email":     "nomsa@example.org",
		},
		"fundingCallId":    "call-3",
		"fundingCallTitle": "Seed Fund 2024",
		"formData": map[string]any{
			"responses": map[string]any{"project-title": "Solar kiosk"},
		},
		"submissionDate": map[string]any{"seconds": float64(1700000000)},
		"adminDecision":  "rejected",
		"allocation":     map[string]any{"allocationAmount": float64(1500)},
	}

	got := Record(record)

	assert.Equal(t, "app-17", got["id"])
	assert.Equal(t, "Nomsa Dlamini", got["applicantName"])
	assert.Equal(t, "nomsa@example.org", got["applicantEmail"])
	assert.Equal(t, "call-3", got["fundingId"])
	assert.Equal(t, "Seed Fund 2024", got["fundingTitle"])
	assert.Equal(t, map[string]any{"project-title": "Solar kiosk"}, got["answers"])
	assert.Equal(t, "declined", got["status"])

	submitted, ok := got["submittedAt"].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, submitted)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *submitted)

	assert.Equal(t, map[string]any{"allocationAmount": float64(1500)}, got["fundAllocation"])
}

func TestRecordCanonicalFieldsWin(t *testing.T) {
	record := map[string]any{
		"id":             "app-1",
		"applicantName":  "Direct Name",
		"applicantEmail": "direct@example.org",
		"fundingTitle":   "Direct Title",
		"answers":        map[string]any{"q": "a"},
		"status":         "approved",
		"fundAllocation": map[string]any{"allocationAmount": float64(10)},
		"allocation":     map[string]any{"allocationAmount": float64(99)},
		"applicant":      map[string]any{"name": "Nested Name"},
	}

	got := Record(record)

	assert.Equal(t, "Direct Name", got["applicantName"])
	assert.Equal(t, "direct@example.org", got["applicantEmail"])
	assert.Equal(t, "Direct Title", got["fundingTitle"])
	assert.Equal(t, "approved", got["status"])
	assert.Equal(t, map[string]any{"allocationAmount": float64(10)}, got["fundAllocation"])
}

func TestRecordEmpty(t *testing.T) {
	got := Record(map[string]any{})

	assert.Equal(t, "", got["id"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, map[string]any{}, got["answers"])
	assert.Nil(t, got["submittedAt"])
}
