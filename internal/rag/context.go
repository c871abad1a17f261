package rag

import (
	"strings"
	"unicode/utf8"
)

// NoContext replaces an empty assembled context. Prompt templates check for it.
const NoContext = "NO_RELEVANT_CONTEXT"

// Character budgets for assembled context.
const (
	SummaryContextBudget = 12000
	ChatContextBudget    = 12000
	QuizContextBudget    = 15000
)

const contextSeparator = "\n\n"

// AssembleContext joins texts with a blank line in the given order and hard-cuts the result at
// budget characters. A blank result becomes NoContext.
func AssembleContext(texts []string, budget int) string {
	joined := strings.Join(texts, contextSeparator)
	if budget > 0 && utf8.RuneCountInString(joined) > budget {
		joined = string([]rune(joined)[:budget])
	}
	if strings.TrimSpace(joined) == "" {
		return NoContext
	}
	return joined
}

// IsNoContext reports whether an assembled context carries no document text.
func IsNoContext(context string) bool {
	return context == NoContext
}

// MatchTexts returns the chunk texts of matches, best match first.
func MatchTexts(matches []Match) []string {
	texts := make([]string, len(matches))
	for i := range matches {
		texts[i] = matches[i].Content
	}
	return texts
}
