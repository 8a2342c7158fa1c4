package intel

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// Service implements interfaces.IntentService with a fixed keyword table
// and regex entity extraction. Classification is deterministic so intent
// behavior is reproducible without a model call.
type Service struct {
	kvStorage interfaces.KeyValueStorage
	logger    arbor.ILogger
}

var _ interfaces.IntentService = (*Service)(nil)

// NewService creates a new intent service
func NewService(kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		kvStorage: kvStorage,
		logger:    logger,
	}
}

func (s *Service) Classify(message string) interfaces.IntentResult {
	return Classify(message)
}

func (s *Service) ExtractEntities(message string) interfaces.Entities {
	return ExtractEntities(message)
}

// IntentAction returns a canned deterministic reply for intents that have
// one. The empty string means the intent carries no action.
func (s *Service) IntentAction(ctx context.Context, intent interfaces.IntentResult, message string) string {
	switch intent.Intent {
	case "booking":
		return "An agent will confirm your booking shortly. Please share your preferred date and time if you have one."
	case "order_status":
		entities := ExtractEntities(message)
		if len(entities.OrderRefs) > 0 {
			return fmt.Sprintf("We are checking the status of %s and will update you here.", entities.OrderRefs[0])
		}
		return "Please share your order reference so we can check its status."
	case "refund":
		return "Refund requests are reviewed within one business day. Please share your order reference to speed things up."
	case "pricing":
		if s.kvStorage != nil {
			summary, err := s.kvStorage.Get(ctx, "pricing_summary")
			if err == nil && summary != "" {
				return summary
			}
		}
		return ""
	default:
		return ""
	}
}
