package application

import (
	"testing"

	"github.com/MpenduloXulu/TTI-Website/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSections() []types.Section {
	return []types.Section{
		{
			ID:    "profile",
			Title: "Profile",
			Fields: []types.Field{
				{ID: "full-name", Label: "Full name", InputType: "text"},
				{ID: "amount", Label: "Amount requested", InputType: "number"},
			},
		},
		{
			ID:    "project",
			Title: "Project",
			Fields: []types.Field{
				{ID: "summary", Label: "Summary", InputType: "textarea"},
			},
		},
	}
}

func completeResponses() map[string]string {
	return map[string]string{
		"full-name": "Thandi Nkosi",
		"amount":    "25000",
		"summary":   "A rural connectivity pilot.",
	}
}

func TestSlugID(t *testing.T) {
	assert.Equal(t, "project-proposal-pdf", SlugID("Project proposal (PDF)"))
	assert.Equal(t, "curriculum-vitae", SlugID("Curriculum Vitae"))
	assert.Equal(t, "budget-breakdown-xls-or-pdf", SlugID("Budget breakdown (XLS or PDF)"))
	assert.Equal(t, "cv", SlugID("  CV  "))
}

func TestDocumentRequirementsDefaults(t *testing.T) {
	requirements := DocumentRequirements(nil)

	require.Len(t, requirements, 3)
	assert.Equal(t, "project-proposal-pdf", requirements[0].ID)
	assert.Equal(t, "budget-breakdown-xls-or-pdf", requirements[1].ID)
	assert.Equal(t, "curriculum-vitae", requirements[2].ID)
}

func TestDocumentRequirementsDeclared(t *testing.T) {
	requirements := DocumentRequirements([]string{"Proposal", "CV"})

	require.Len(t, requirements, 2)
	assert.Equal(t, types.DocumentRequirement{ID: "proposal", Label: "Proposal"}, requirements[0])
	assert.Equal(t, types.DocumentRequirement{ID: "cv", Label: "CV"}, requirements[1])
}

func TestSectionsOrDefault(t *testing.T) {
	assert.Equal(t, DefaultSections, SectionsOrDefault(nil))
	assert.Equal(t, DefaultSections, SectionsOrDefault([]byte("not json")))
	assert.Equal(t, DefaultSections, SectionsOrDefault([]byte("[]")))

	declared := SectionsOrDefault([]byte(`[{"id":"s1","title":"S1","fields":[{"id":"f1","label":"F1","inputType":"text"}]}]`))
	require.Len(t, declared, 1)
	assert.Equal(t, "s1", declared[0].ID)
	require.Len(t, declared[0].Fields, 1)
	assert.Equal(t, "f1", declared[0].Fields[0].ID)
}

func TestInitialResponses(t *testing.T) {
	responses := InitialResponses(testSections())

	assert.Equal(t, map[string]string{"full-name": "", "amount": "", "summary": ""}, responses)
}

func TestOverlayDraftDraftWins(t *testing.T) {
	initial := InitialResponses(testSections())
	draft := map[string]string{"full-name": "Thandi Nkosi", "orphan-field": "kept"}

	merged := OverlayDraft(initial, draft)

	assert.Equal(t, "Thandi Nkosi", merged["full-name"])
	assert.Equal(t, "", merged["amount"])
	assert.Equal(t, "kept", merged["orphan-field"])
}

func TestValidateResponses(t *testing.T) {
	sections := testSections()

	assert.NoError(t, ValidateResponses(sections, completeResponses()))

	empty := completeResponses()
	empty["amount"] = ""
	assert.ErrorIs(t, ValidateResponses(sections, empty), ErrMissingFields)

	blank := completeResponses()
	blank["summary"] = "   "
	assert.ErrorIs(t, ValidateResponses(sections, blank), ErrMissingFields)

	missing := completeResponses()
	delete(missing, "full-name")
	assert.ErrorIs(t, ValidateResponses(sections, missing), ErrMissingFields)

	// a numeric zero is still an answer
	zero := completeResponses()
	zero["amount"] = "0"
	assert.NoError(t, ValidateResponses(sections, zero))
}

func TestValidateDocuments(t *testing.T) {
	requirements := DocumentRequirements([]string{"Proposal", "CV"})

	proposalOnly := []types.Attachment{{Name: "proposal.pdf", DocType: "proposal"}}
	assert.ErrorIs(t, ValidateDocuments(requirements, proposalOnly), ErrMissingDocuments)

	both := append(proposalOnly, types.Attachment{Name: "cv.pdf", DocType: "cv"})
	assert.NoError(t, ValidateDocuments(requirements, both))

	// extra attachments of unknown types never satisfy a slot
	stray := []types.Attachment{{Name: "x.pdf", DocType: "letter"}}
	assert.ErrorIs(t, ValidateDocuments(requirements, stray), ErrMissingDocuments)

	assert.NoError(t, ValidateDocuments(nil, nil))
}

func TestStructureResponsesPreservesOrder(t *testing.T) {
	structured := StructureResponses(testSections(), completeResponses())

	require.Len(t, structured, 2)
	assert.Equal(t, "profile", structured[0].SectionID)
	assert.Equal(t, "Profile", structured[0].SectionTitle)
	require.Len(t, structured[0].Fields, 2)
	assert.Equal(t, types.StructuredField{ID: "full-name", Label: "Full name", Value: "Thandi Nkosi"}, structured[0].Fields[0])
	assert.Equal(t, types.StructuredField{ID: "amount", Label: "Amount requested", Value: "25000"}, structured[0].Fields[1])
	assert.Equal(t, "project", structured[1].SectionID)
	assert.Equal(t, "A rural connectivity pilot.", structured[1].Fields[0].Value)
}

func TestSubmissionGateScenario(t *testing.T) {
	// Opportunity with two required documents: proposal and cv.
	sections := testSections()
	requirements := DocumentRequirements([]string{"Proposal", "CV"})
	responses := completeResponses()

	attachments := []types.Attachment{{Name: "proposal.pdf", DocType: "proposal"}}

	require.NoError(t, ValidateResponses(sections, responses))
	assert.ErrorIs(t, ValidateDocuments(requirements, attachments), ErrMissingDocuments)

	attachments = append(attachments, types.Attachment{Name: "cv.pdf", DocType: "cv"})
	assert.NoError(t, ValidateDocuments(requirements, attachments))
}
