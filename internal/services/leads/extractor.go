package leads

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ternarybob/respondo/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.]+`)
	// Optional leading +, then 9+ digits with internal spaces or hyphens
	phoneRegex  = regexp.MustCompile(`\+?\d[\d\s-]{7,}\d`)
	nameLabel   = regexp.MustCompile(`(?i)\bname\s*[:=]\s*([^\n,;|]+)`)
	intentLabel = regexp.MustCompile(`(?i)\bintent\s*[:=]\s*([^\n,;|]+)`)
	// Capture at most two words so trailing clauses don't leak into names
	namePhrase = regexp.MustCompile(`(?i)\bmy name is\s+([A-Za-z'-]+(?:\s[A-Za-z'-]+)?)`)
)

// llmLead mirrors the JSON object requested from the extraction prompt.
type llmLead struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Intent string `json:"intent"`
}

// NormalizeLLMOutput parses the raw JSON from an LLM extraction call into
// lead fields. Malformed JSON is treated as an empty object, never an
// error. Fields that are empty after trimming become null.
func NormalizeLLMOutput(raw string) models.LeadFields {
	var parsed llmLead
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return models.LeadFields{}
	}

	return models.LeadFields{
		Name:   optional(parsed.Name),
		Phone:  optional(parsed.Phone),
		Email:  optional(parsed.Email),
		Intent: optional(parsed.Intent),
	}
}

// ExtractHeuristic pulls lead fields from a message with regex patterns.
// Name and intent come from "name:"/"name=" style labels, with a spoken
// "my name is" fallback for the name.
func ExtractHeuristic(message string) models.LeadFields {
	fields := models.LeadFields{}

	if m := nameLabel.FindStringSubmatch(message); m != nil {
		fields.Name = optional(m[1])
	} else if m := namePhrase.FindStringSubmatch(message); m != nil {
		fields.Name = optional(m[1])
	}
	if m := intentLabel.FindStringSubmatch(message); m != nil {
		fields.Intent = optional(m[1])
	}
	if m := emailRegex.FindString(message); m != "" {
		fields.Email = optional(m)
	}
	if m := phoneRegex.FindString(message); m != "" {
		if digitCount(m) >= 9 {
			fields.Phone = optional(strings.TrimSpace(m))
		}
	}

	return fields
}

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

// optional trims the value and returns nil when nothing remains.
func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
