package types

// Field is a single question inside an application form section.
type Field struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	InputType   string `json:"inputType"` // "text", "email", "number", "textarea"
	Placeholder string `json:"placeholder,omitempty"`
	MaxWords    int    `json:"maxWords,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// Section is an ordered group of fields declared by an opportunity.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// DocumentRequirement is a supporting document slot an applicant must fill.
type DocumentRequirement struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Attachment is the stored metadata for one uploaded supporting document.
// UploadedAt is kept as an ISO string; legacy records carry other shapes and
// go through the normalize package on read.
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Base64      string `json:"base64,omitempty"`
	UploadedAt  string `json:"uploadedAt"`
	DocType     string `json:"docType"`
	DocLabel    string `json:"docLabel"`
}

// FundAllocation is the award recorded against an approved application.
type FundAllocation struct {
	AllocationAmount float64 `json:"allocationAmount"`
	AllocationNotes  string  `json:"allocationNotes"`
	AllocatedBy      string  `json:"allocatedBy"`
	AllocatedAtIso   string  `json:"allocatedAtIso"`
	UpdatedAt        string  `json:"updatedAt"`
}

// StructuredSection mirrors a declared section with the applicant's answers
// filled in; this is the persisted source of truth for rendering.
type StructuredSection struct {
	SectionID    string            `json:"sectionId"`
	SectionTitle string            `json:"sectionTitle"`
	Fields       []StructuredField `json:"fields"`
}

type StructuredField struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}
