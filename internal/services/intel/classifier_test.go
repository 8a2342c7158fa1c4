package intel

import (
	"testing"
)

func TestClassify_Refund(t *testing.T) {
	result := Classify("I want a refund")
	if result.Intent != "refund" {
		t.Errorf("Expected intent refund, got %q", result.Intent)
	}
	if result.Confidence != 0.55 {
		t.Errorf("Expected confidence 0.55, got %v", result.Confidence)
	}
}

func TestClassify_NoKeywords(t *testing.T) {
	result := Classify("hello there")
	if result.Intent != "general" {
		t.Errorf("Expected intent general, got %q", result.Intent)
	}
	if result.Confidence != 0.35 {
		t.Errorf("Expected confidence 0.35, got %v", result.Confidence)
	}
}

func TestClassify_HighestCountWins(t *testing.T) {
	result := Classify("what does pricing cost, can I get a quote")
	if result.Intent != "pricing" {
		t.Errorf("Expected intent pricing, got %q", result.Intent)
	}
	// Three keyword hits: pricing (and price inside it), cost, quote
	if result.Confidence != 0.95 {
		t.Errorf("Expected capped confidence, got %v", result.Confidence)
	}
}

func TestClassify_TieKeepsFirstDeclared(t *testing.T) {
	// One pricing keyword and one refund keyword; pricing is declared first
	result := Classify("price of a return label")
	if result.Intent != "pricing" {
		t.Errorf("Expected first-declared intent to win the tie, got %q", result.Intent)
	}
}

func TestClassify_ConfidenceCap(t *testing.T) {
	result := Classify("order tracking shipment status")
	if result.Intent != "order_status" {
		t.Errorf("Expected intent order_status, got %q", result.Intent)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Expected confidence capped at 0.95, got %v", result.Confidence)
	}
}

func TestExtractEntities(t *testing.T) {
	entities := ExtractEntities("Order ORD-20043 placed on 12/05/2024 for $49.99, arriving tomorrow")
	if len(entities.OrderRefs) != 1 || entities.OrderRefs[0] != "ORD-20043" {
		t.Errorf("Expected order ref ORD-20043, got %v", entities.OrderRefs)
	}
	if len(entities.Dates) != 2 {
		t.Errorf("Expected numeric date and 'tomorrow', got %v", entities.Dates)
	}
	if len(entities.Amounts) != 1 || entities.Amounts[0] != "$49.99" {
		t.Errorf("Expected amount $49.99, got %v", entities.Amounts)
	}
}
