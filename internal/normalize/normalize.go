// Package normalize reconciles the inconsistent field names and value shapes
// found across legacy application records into one canonical form. Every
// function here is total: bad input degrades to a zero value, never an error.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/MpenduloXulu/TTI-Website/internal/types"
)

// Status maps a raw status value onto the canonical taxonomy
// {pending, approved, declined}.
func Status(raw string) string {
	switch raw {
	case types.StatusApproved:
		return types.StatusApproved
	case types.StatusDeclined, "rejected":
		return types.StatusDeclined
	default:
		return types.StatusPending
	}
}

// Decision resolves the canonical status of a record that may carry its
// decision under "status", "adminDecision", or neither.
func Decision(status, adminDecision string) string {
	if status != "" {
		return Status(status)
	}
	if adminDecision != "" && adminDecision != types.StatusPending {
		return Status(adminDecision)
	}
	return types.StatusPending
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Date coerces the timestamp shapes legacy records carry into a time.Time:
// native times, epoch-second objects ({seconds} or {_seconds}), numeric
// epochs, and parsable strings. Unparsable input yields nil.
func Date(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return v
	case map[string]any:
		if seconds, ok := numeric(v["seconds"]); ok {
			return epochSeconds(seconds)
		}
		if seconds, ok := numeric(v["_seconds"]); ok {
			return epochSeconds(seconds)
		}
		return nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return epochMillis(f)
		}
		return nil
	case float64:
		return epochMillis(v)
	case int64:
		return epochMillis(float64(v))
	case int:
		return epochMillis(float64(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func epochSeconds(seconds float64) *time.Time {
	t := time.Unix(int64(seconds), 0).UTC()
	return &t
}

func epochMillis(millis float64) *time.Time {
	t := time.UnixMilli(int64(millis)).UTC()
	return &t
}

// Record adapts a loosely-typed legacy application document in place of the
// shapes older records used: applicant identity split across sub-objects,
// funding references under several names, answers in nested form data, and
// allocation under an alias. The returned map always carries the canonical
// keys; unrecognized keys are preserved.
func Record(record map[string]any) map[string]any {
	normalized := make(map[string]any, len(record)+8)
	for key, value := range record {
		normalized[key] = value
	}

	normalized["id"] = firstString(record, "id", "applicationId", "uid")
	normalized["applicantName"] = applicantName(record)
	normalized["applicantEmail"] = applicantEmail(record)
	normalized["fundingId"] = firstString(record, "fundingId", "fundingCallId")
	if normalized["fundingId"] == "" {
		if funding, ok := record["funding"].(map[string]any); ok {
			normalized["fundingId"] = stringValue(funding["id"])
		}
	}
	normalized["fundingTitle"] = fundingTitle(record)
	normalized["answers"] = answers(record)
	normalized["submittedAt"] = submittedAt(record)
	normalized["status"] = Decision(stringValue(record["status"]), stringValue(record["adminDecision"]))

	if _, exists := normalized["fundAllocation"]; !exists {
		if allocation, ok := record["allocation"]; ok {
			normalized["fundAllocation"] = allocation
		}
	}

	return normalized
}

func applicantName(record map[string]any) string {
	if name := stringValue(record["applicantName"]); name != "" {
		return name
	}

	applicant, _ := record["applicant"].(map[string]any)
	if applicant == nil {
		return ""
	}
	if name := stringValue(applicant["name"]); name != "" {
		return name
	}

	parts := []string{}
	if first := stringValue(applicant["firstName"]); first != "" {
		parts = append(parts, first)
	}
	if last := stringValue(applicant["lastName"]); last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, " ")
}

func applicantEmail(record map[string]any) string {
	if email := stringValue(record["applicantEmail"]); email != "" {
		return email
	}
	if applicant, ok := record["applicant"].(map[string]any); ok {
		return stringValue(applicant["email"])
	}
	return ""
}

func fundingTitle(record map[string]any) string {
	if title := firstString(record, "fundingTitle", "fundingCallTitle", "fundingCallName"); title != "" {
		return title
	}
	if fundingCall, ok := record["fundingCall"].(map[string]any); ok {
		return stringValue(fundingCall["title"])
	}
	return ""
}

func answers(record map[string]any) any {
	if value, ok := record["answers"]; ok && value != nil {
		return value
	}
	if formData, ok := record["formData"].(map[string]any); ok {
		if responses, ok := formData["responses"]; ok && responses != nil {
			return responses
		}
		return formData
	}
	return map[string]any{}
}

func submittedAt(record map[string]any) *time.Time {
	for _, key := range []string{"submissionDate", "submittedAt", "createdAt"} {
		if date := Date(record[key]); date != nil {
			return date
		}
	}
	return nil
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := stringValue(record[key]); value != "" {
			return value
		}
	}
	return ""
}

func stringValue(value any) string {
	s, _ := value.(string)
	return s
}
