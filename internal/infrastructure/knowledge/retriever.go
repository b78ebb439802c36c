// Package knowledge provides FAQ retrieval over the product knowledge base
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// Entry is one FAQ pair from the knowledge base file.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Match is a scored retrieval result.
type Match struct {
	Entry Entry
	Score int
}

// Retriever answers product questions by keyword overlap against FAQ entries.
type Retriever struct {
	entries []Entry
	tokens  [][]string
	logger  *logging.ChanneledLogger
}

// NewRetriever loads the knowledge base from path and pre-tokenizes all
// questions. A missing or empty file yields a retriever that never matches.
func NewRetriever(path string, logger *logging.ChanneledLogger) (*Retriever, error) {
	r := &Retriever{logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Chat().Warn("Knowledge base file not found, retrieval disabled", "path", path)
			return r, nil
		}
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &r.entries); err != nil {
		return nil, fmt.Errorf("parsing knowledge base %s: %w", path, err)
	}

	r.tokens = make([][]string, len(r.entries))
	for i, e := range r.entries {
		r.tokens[i] = tokenize(e.Question + " " + e.Answer)
	}

	logger.Chat().Info("Knowledge base loaded", "path", path, "entries", len(r.entries))
	return r, nil
}

// Size returns the number of loaded FAQ entries.
func (r *Retriever) Size() int {
	return len(r.entries)
}

// Retrieve returns up to topK entries ranked by shared keyword count.
// Entries with zero overlap are never returned.
func (r *Retriever) Retrieve(query string, topK int) []Match {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || topK <= 0 {
		return nil
	}

	var matches []Match
	for i, e := range r.entries {
		score := sharedKeywords(queryTokens, r.tokens[i])
		if score == 0 {
			continue
		}
		matches = append(matches, Match{Entry: e, Score: score})
	}

	// Insertion sort by descending score. The KB is small and order must be
	// stable so ties keep file order.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Score > matches[j-1].Score; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// BestAnswer returns the single highest-scoring answer, or "" when nothing
// in the knowledge base overlaps the query.
func (r *Retriever) BestAnswer(query string) string {
	matches := r.Retrieve(query, 1)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Entry.Answer
}
