package knowledge

import (
	"math"
	"sort"
	"strings"

	"github.com/ternarybob/respondo/internal/models"
)

// phraseBonus is added when the full query appears verbatim in a chunk.
const phraseBonus = 2.0

// ScoreChunks ranks chunks against a query with TF-IDF keyword scoring.
// Queries with no indexable tokens return no results. Chunks containing the
// whole query as a substring get a fixed phrase bonus. Chunks scoring zero
// are dropped.
func ScoreChunks(chunks []*models.KnowledgeChunk, query string, topK int) []models.ScoredChunk {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || len(chunks) == 0 {
		return nil
	}

	uniqueTerms := make([]string, 0, len(queryTokens))
	seen := make(map[string]struct{}, len(queryTokens))
	for _, term := range queryTokens {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		uniqueTerms = append(uniqueTerms, term)
	}

	// Term frequencies per chunk and document frequencies per term
	termFreqs := make([]map[string]int, len(chunks))
	docFreq := make(map[string]int, len(uniqueTerms))
	for i, chunk := range chunks {
		freq := make(map[string]int)
		for _, token := range Tokenize(chunk.Text) {
			freq[token]++
		}
		termFreqs[i] = freq
		for _, term := range uniqueTerms {
			if freq[term] > 0 {
				docFreq[term]++
			}
		}
	}

	n := float64(len(chunks))
	idf := make(map[string]float64, len(uniqueTerms))
	for _, term := range uniqueTerms {
		idf[term] = math.Log((n+1)/float64(docFreq[term]+1)) + 1
	}

	// The phrase is the query tokens joined by single spaces
	phrase := strings.Join(queryTokens, " ")

	scored := make([]models.ScoredChunk, 0, len(chunks))
	for i, chunk := range chunks {
		var score float64
		for _, term := range uniqueTerms {
			if tf := termFreqs[i][term]; tf > 0 {
				score += float64(tf) * idf[term]
			}
		}
		if phrase != "" && strings.Contains(strings.ToLower(chunk.Text), phrase) {
			score += phraseBonus
		}
		if score <= 0 {
			continue
		}
		scored = append(scored, models.ScoredChunk{Chunk: *chunk, Score: score})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
