// Package application holds the form logic of the submission pipeline:
// default schemas, response bookkeeping, required-field and required-document
// validation, and the reshaping of flat answers into the declared
// section/field structure.
package application

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/MpenduloXulu/TTI-Website/internal/types"
)

var (
	ErrMissingFields    = errors.New("Please complete all required fields before submitting.")
	ErrMissingDocuments = errors.New("Upload all required supporting documents before submitting.")
)

// DefaultSections is the fallback form schema used when an opportunity does
// not declare its own applicationAttributes.
var DefaultSections = []types.Section{
	{
		ID:    "personal-profile",
		Title: "Personal Profile",
		Fields: []types.Field{
			{ID: "name-surname", Label: "1. Name & Surname", InputType: "text", Placeholder: "Enter your answer"},
			{ID: "staff-student-number", Label: "2. Staff Number/ Student Number", InputType: "text", Placeholder: "Enter your answer"},
			{ID: "email-address", Label: "3. Email Address", InputType: "email", Placeholder: "Enter your answer"},
			{ID: "cellphone-number", Label: "4. Cellphone Number", InputType: "text", Placeholder: "Enter your answer"},
		},
	},
	{
		ID:    "innovation-projects",
		Title: "Innovation Technology/ Projects",
		Fields: []types.Field{
			{ID: "project-title", Label: "5. Project Title", InputType: "text", Placeholder: "Enter your answer"},
			{ID: "project-details", Label: "6. Provide details about your project - Max 250 words", InputType: "textarea", Placeholder: "Enter your answer", MaxWords: 250},
			{ID: "total-funding-requested", Label: "7. Total funding requested/Requested", InputType: "number", Placeholder: "Enter your answer"},
			{ID: "purpose-of-funding", Label: "8. Purpose of funding", InputType: "textarea", Placeholder: "Enter your answer"},
			{ID: "technology-innovation", Label: "9. What is new about your technology, and what market are you targeting?", InputType: "textarea", Placeholder: "Enter your answer"},
			{ID: "technology-readiness", Label: "10. What is the Technology Readiness Level of your technology?", InputType: "text", Placeholder: "Enter your answer"},
		},
	},
}

// DefaultDocumentRequirements is the fixed document set applied when an
// opportunity declares none.
var DefaultDocumentRequirements = []types.DocumentRequirement{
	{ID: "proposal", Label: "Project proposal (PDF)"},
	{ID: "budget", Label: "Budget breakdown (XLS or PDF)"},
	{ID: "cv", Label: "Curriculum Vitae"},
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// SlugID derives a stable requirement id from a document label.
func SlugID(label string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(label), "-")
	return strings.Trim(slug, "-")
}

// DocumentRequirements resolves an opportunity's declared document labels
// into requirement slots, falling back to the default trio.
func DocumentRequirements(labels []string) []types.DocumentRequirement {
	if len(labels) == 0 {
		labels = make([]string, 0, len(DefaultDocumentRequirements))
		for _, requirement := range DefaultDocumentRequirements {
			labels = append(labels, requirement.Label)
		}
	}

	requirements := make([]types.DocumentRequirement, 0, len(labels))
	for _, label := range labels {
		requirements = append(requirements, types.DocumentRequirement{
			ID:    SlugID(label),
			Label: label,
		})
	}
	return requirements
}

// SectionsOrDefault parses a declared applicationAttributes blob, falling
// back to DefaultSections when the opportunity declares nothing usable.
func SectionsOrDefault(raw []byte) []types.Section {
	if len(raw) == 0 {
		return DefaultSections
	}

	var sections []types.Section
	if err := json.Unmarshal(raw, &sections); err != nil || len(sections) == 0 {
		return DefaultSections
	}
	return sections
}

// DocumentLabels parses a declared requiredDocuments blob into its labels.
func DocumentLabels(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil
	}
	return labels
}

// InitialResponses creates one empty response slot per declared field.
func InitialResponses(sections []types.Section) map[string]string {
	responses := make(map[string]string)
	for _, section := range sections {
		for _, field := range section.Fields {
			responses[field.ID] = ""
		}
	}
	return responses
}

// OverlayDraft lays saved draft values over the initial slots; draft values
// win, and stray draft keys for removed fields are carried along untouched.
func OverlayDraft(initial, draft map[string]string) map[string]string {
	merged := make(map[string]string, len(initial)+len(draft))
	for id, value := range initial {
		merged[id] = value
	}
	for id, value := range draft {
		merged[id] = value
	}
	return merged
}

// ValidateResponses enforces required-ness across every declared field.
// Numeric fields fail when empty; every other type fails when the trimmed
// value is empty. The first failure aborts with a single descriptive error.
func ValidateResponses(sections []types.Section, responses map[string]string) error {
	for _, section := range sections {
		for _, field := range section.Fields {
			value := responses[field.ID]
			if field.InputType == "number" {
				if value == "" {
					return ErrMissingFields
				}
				continue
			}
			if strings.TrimSpace(value) == "" {
				return ErrMissingFields
			}
		}
	}
	return nil
}

// ValidateDocuments requires at least one attachment per requirement slot.
func ValidateDocuments(requirements []types.DocumentRequirement, attachments []types.Attachment) error {
	satisfied := make(map[string]bool, len(attachments))
	for _, attachment := range attachments {
		satisfied[attachment.DocType] = true
	}

	for _, requirement := range requirements {
		if !satisfied[requirement.ID] {
			return ErrMissingDocuments
		}
	}
	return nil
}

// StructureResponses reshapes the flat fieldId->value map into the ordered
// section/field representation mirroring the declared schema.
func StructureResponses(sections []types.Section, responses map[string]string) []types.StructuredSection {
	structured := make([]types.StructuredSection, 0, len(sections))
	for _, section := range sections {
		fields := make([]types.StructuredField, 0, len(section.Fields))
		for _, field := range section.Fields {
			fields = append(fields, types.StructuredField{
				ID:    field.ID,
				Label: field.Label,
				Value: responses[field.ID],
			})
		}
		structured = append(structured, types.StructuredSection{
			SectionID:    section.ID,
			SectionTitle: section.Title,
			Fields:       fields,
		})
	}
	return structured
}
