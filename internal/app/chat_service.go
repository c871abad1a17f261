package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studymate/internal/model"
	"studymate/internal/rag"
	"studymate/internal/repository"
)

// Searcher finds the chunks of one document closest to a query. Failures degrade to no matches.
type Searcher interface {
	Search(ctx context.Context, documentID uint, query string, topK int) []rag.Match
}

type ChatAnswer struct {
	Answer  string      `json:"answer"`
	Sources []rag.Match `json:"sources"`
}

type ChatService struct {
	docs      *repository.DocumentRepository
	searcher  Searcher
	completer Completer
	activity  ActivityLogger
	topK      int
	budget    int
	timeout   time.Duration
}

func NewChatService(
	docs *repository.DocumentRepository,
	searcher Searcher,
	completer Completer,
	activity ActivityLogger,
	topK, budget int,
	timeout time.Duration,
) *ChatService {
	if topK < 1 {
		topK = rag.DefaultTopK
	}
	if budget <= 0 {
		budget = rag.ChatContextBudget
	}
	return &ChatService{
		docs:      docs,
		searcher:  searcher,
		completer: completer,
		activity:  activity,
		topK:      topK,
		budget:    budget,
		timeout:   timeout,
	}
}

// Ask answers a question from the document's most similar chunks. With no usable context the
// fixed refusal is returned without calling the model.
func (s *ChatService) Ask(ctx context.Context, documentID uint, question string) (*ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	doc, err := loadDocument(ctx, s.docs, documentID)
	if err != nil {
		return nil, err
	}

	matches := s.searcher.Search(ctx, doc.ID, question, s.topK)
	docContext := rag.AssembleContext(rag.MatchTexts(matches), s.budget)

	answer := RefusalAnswer
	sources := []rag.Match{}
	if !rag.IsNoContext(docContext) {
		raw, err := complete(ctx, s.completer, s.timeout, chatPrompt(question, docContext))
		if err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(raw); text != "" {
			answer = text
		}
		sources = matches
	}

	s.activity.Record(model.ActionChat, fmt.Sprintf("Asked about %s: %s", doc.Title, truncate(question, 80)))
	return &ChatAnswer{Answer: answer, Sources: sources}, nil
}
