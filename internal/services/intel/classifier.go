package intel

import (
	"math"
	"strings"

	"github.com/ternarybob/respondo/internal/interfaces"
)

// intentKeywords maps each intent to its trigger keywords. Declaration
// order breaks ties: the earlier intent wins when counts are equal.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{"pricing", []string{"price", "pricing", "cost", "quote"}},
	{"support", []string{"help", "support", "issue", "problem"}},
	{"refund", []string{"refund", "chargeback", "return"}},
	{"booking", []string{"book", "schedule", "appointment"}},
	{"order_status", []string{"order", "tracking", "shipment", "status"}},
}

// IntentGeneral is returned when no intent keywords match.
const IntentGeneral = "general"

// Classify scores the message against each intent's keyword list and
// returns the best match. Confidence is min(0.95, 0.4 + 0.15*count) for a
// match, 0.35 for "general", rounded to 2 decimals.
func Classify(message string) interfaces.IntentResult {
	lowered := strings.ToLower(message)

	bestIntent := IntentGeneral
	bestCount := 0
	for _, entry := range intentKeywords {
		count := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			bestIntent = entry.intent
		}
	}

	confidence := 0.35
	if bestCount > 0 {
		confidence = math.Min(0.95, 0.4+0.15*float64(bestCount))
	}
	confidence = math.Round(confidence*100) / 100

	return interfaces.IntentResult{
		Intent:     bestIntent,
		Confidence: confidence,
	}
}
