package leads

import (
	"testing"

	"github.com/ternarybob/respondo/internal/models"
)

func TestNormalizeLLMOutput_MalformedJSON(t *testing.T) {
	fields := NormalizeLLMOutput("not json at all")
	if !fields.IsEmpty() {
		t.Errorf("Expected empty fields for malformed JSON, got %+v", fields)
	}
}

func TestNormalizeLLMOutput_TrimsAndNulls(t *testing.T) {
	fields := NormalizeLLMOutput(`{"name": "  Jane Doe  ", "phone": "", "email": "   ", "intent": "pricing"}`)
	if models.StringOrEmpty(fields.Name) != "Jane Doe" {
		t.Errorf("Expected trimmed name, got %v", fields.Name)
	}
	if fields.Phone != nil || fields.Email != nil {
		t.Errorf("Expected empty-after-trim fields to be null, got phone=%v email=%v", fields.Phone, fields.Email)
	}
	if models.StringOrEmpty(fields.Intent) != "pricing" {
		t.Errorf("Expected intent pricing, got %v", fields.Intent)
	}
}

func TestNormalizeLLMOutput_FencedJSON(t *testing.T) {
	fields := NormalizeLLMOutput("```json\n{\"name\": \"Sam\", \"phone\": \"\", \"email\": \"\", \"intent\": \"\"}\n```")
	if models.StringOrEmpty(fields.Name) != "Sam" {
		t.Errorf("Expected name Sam from fenced JSON, got %v", fields.Name)
	}
}

func TestExtractHeuristic_Labels(t *testing.T) {
	fields := ExtractHeuristic("name: Alice Smith, intent= pricing")
	if models.StringOrEmpty(fields.Name) != "Alice Smith" {
		t.Errorf("Expected name Alice Smith, got %v", fields.Name)
	}
	if models.StringOrEmpty(fields.Intent) != "pricing" {
		t.Errorf("Expected intent pricing, got %v", fields.Intent)
	}
}

func TestExtractHeuristic_EmailAndPhone(t *testing.T) {
	fields := ExtractHeuristic("reach me at bob.jones+sales@example.co.uk or +44 20 7946 0958")
	if models.StringOrEmpty(fields.Email) != "bob.jones+sales@example.co.uk" {
		t.Errorf("Expected email match, got %v", fields.Email)
	}
	if fields.Phone == nil {
		t.Fatal("Expected phone match")
	}
}

func TestExtractHeuristic_ShortNumberIsNotPhone(t *testing.T) {
	fields := ExtractHeuristic("my order number is 12345")
	if fields.Phone != nil {
		t.Errorf("Expected no phone for short digit run, got %v", *fields.Phone)
	}
}

func TestExtractHeuristic_NothingToCapture(t *testing.T) {
	fields := ExtractHeuristic("hello, how are you today")
	if !fields.IsEmpty() {
		t.Errorf("Expected all-null fields, got %+v", fields)
	}
}

func TestExtractHeuristic_SpokenName(t *testing.T) {
	fields := ExtractHeuristic("hi, my name is Priya Patel and I need a demo")
	if fields.Name == nil {
		t.Fatal("Expected name capture from spoken phrase")
	}
}
