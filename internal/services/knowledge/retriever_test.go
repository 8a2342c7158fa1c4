package knowledge

import (
	"strings"
	"testing"

	"github.com/ternarybob/respondo/internal/models"
)

func TestChunkText_ReconstructsOriginal(t *testing.T) {
	size := 800
	overlap := 100

	var builder strings.Builder
	for i := 0; i < 200; i++ {
		builder.WriteString("Shipping takes three to five business days in most regions. ")
	}
	text := builder.String()

	chunks := ChunkText(text, size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	// Joining chunks with the overlap removed reproduces the input
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		if len(runes) > overlap {
			rebuilt.WriteString(string(runes[overlap:]))
		}
	}
	if rebuilt.String() != text {
		t.Errorf("Rebuilt text does not match original (got %d chars, want %d)",
			rebuilt.Len(), len(text))
	}

	for i, chunk := range chunks[:len(chunks)-1] {
		if len([]rune(chunk)) != size {
			t.Errorf("Chunk %d has length %d, want %d", i, len([]rune(chunk)), size)
		}
	}
}

func TestChunkText_ShortInput(t *testing.T) {
	chunks := ChunkText("short text", 800, 100)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("Expected single chunk with full text, got %v", chunks)
	}

	if chunks := ChunkText("", 800, 100); chunks != nil {
		t.Errorf("Expected no chunks for empty text, got %v", chunks)
	}
}

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("What is the price for your premium plan?")
	want := []string{"price", "premium", "plan"}
	if len(tokens) != len(want) {
		t.Fatalf("Expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("Token %d: expected %q, got %q", i, want[i], tokens[i])
		}
	}
}

func testChunks(texts ...string) []*models.KnowledgeChunk {
	chunks := make([]*models.KnowledgeChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &models.KnowledgeChunk{
			ID:    "doc_test#" + string(rune('0'+i)),
			DocID: "doc_test",
			Seq:   i,
			Text:  text,
		})
	}
	return chunks
}

func TestScoreChunks_StopWordsOnlyQueryReturnsNothing(t *testing.T) {
	chunks := testChunks(
		"Refund requests are processed within 14 days.",
		"Premium plans cost 49 dollars per month.",
	)

	scored := ScoreChunks(chunks, "what can you", 5)
	if len(scored) != 0 {
		t.Errorf("Expected no results for stop-word query, got %d", len(scored))
	}
}

func TestScoreChunks_PhraseMatchOutranksScatteredTerms(t *testing.T) {
	chunks := testChunks(
		"Premium support is included. Your plan has usage limits.",
		"The premium plan costs 49 dollars per month.",
		"Delivery times vary by region.",
	)

	scored := ScoreChunks(chunks, "premium plan", 5)
	if len(scored) != 2 {
		t.Fatalf("Expected 2 scored chunks, got %d", len(scored))
	}
	// Both chunks match the terms once each; only chunk 1 contains the
	// verbatim phrase and earns the bonus
	if scored[0].Chunk.Seq != 1 {
		t.Errorf("Expected phrase-matching chunk first, got seq %d (score %.3f vs %.3f)",
			scored[0].Chunk.Seq, scored[0].Score, scored[1].Score)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("Expected strictly higher score for phrase match, got %.3f vs %.3f",
			scored[0].Score, scored[1].Score)
	}
}

func TestScoreChunks_FiltersZeroScores(t *testing.T) {
	chunks := testChunks(
		"Opening hours are 9am to 5pm on weekdays.",
		"Contact sales for enterprise pricing.",
	)

	scored := ScoreChunks(chunks, "refund policy", 5)
	if len(scored) != 0 {
		t.Errorf("Expected no results when no term matches, got %d", len(scored))
	}
}

func TestScoreChunks_RespectsTopK(t *testing.T) {
	chunks := testChunks(
		"pricing one", "pricing two", "pricing three", "pricing four",
	)

	scored := ScoreChunks(chunks, "pricing", 2)
	if len(scored) != 2 {
		t.Errorf("Expected topK=2 results, got %d", len(scored))
	}
}
