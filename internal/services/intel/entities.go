package intel

import (
	"regexp"
	"strings"

	"github.com/ternarybob/respondo/internal/interfaces"
)

var (
	numericDateRegex  = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	relativeDateRegex = regexp.MustCompile(`(?i)\b(today|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	amountRegex       = regexp.MustCompile(`[$€£]\s?\d+(?:\.\d{2})?|\b\d+(?:\.\d{2})?\s?(?:dollars|usd|eur|gbp)\b`)
	orderRefRegex     = regexp.MustCompile(`(?i)\bORD-\d{4,}\b|#\d{4,}\b`)
)

// ExtractEntities pulls dates, money amounts and order references from a
// message. Matches keep their original casing.
func ExtractEntities(message string) interfaces.Entities {
	entities := interfaces.Entities{}

	entities.Dates = append(entities.Dates, numericDateRegex.FindAllString(message, -1)...)
	entities.Dates = append(entities.Dates, relativeDateRegex.FindAllString(message, -1)...)
	entities.Amounts = amountRegex.FindAllString(message, -1)
	entities.OrderRefs = orderRefRegex.FindAllString(message, -1)

	entities.Dates = dedupe(entities.Dates)
	entities.Amounts = dedupe(entities.Amounts)
	entities.OrderRefs = dedupe(entities.OrderRefs)
	return entities
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
