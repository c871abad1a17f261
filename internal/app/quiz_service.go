package app

import (
	"context"
	"fmt"
	"time"

	"studymate/internal/model"
	"studymate/internal/rag"
	"studymate/internal/repository"
)

const DefaultQuizQuestions = 15

type QuizQuestion struct {
	Difficulty  string   `json:"difficulty"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
	Source      string   `json:"source"`
}

type Quiz struct {
	DocumentTitle string         `json:"document_title"`
	Questions     []QuizQuestion `json:"questions"`
	Error         string         `json:"error,omitempty"`
}

type QuizService struct {
	docs      *repository.DocumentRepository
	chunks    repository.ChunkStore
	completer Completer
	activity  ActivityLogger
	budget    int
	questions int
	timeout   time.Duration
}

func NewQuizService(
	docs *repository.DocumentRepository,
	chunks repository.ChunkStore,
	completer Completer,
	activity ActivityLogger,
	budget, questions int,
	timeout time.Duration,
) *QuizService {
	if budget <= 0 {
		budget = rag.QuizContextBudget
	}
	if questions <= 0 {
		questions = DefaultQuizQuestions
	}
	return &QuizService{
		docs:      docs,
		chunks:    chunks,
		completer: completer,
		activity:  activity,
		budget:    budget,
		questions: questions,
		timeout:   timeout,
	}
}

// Generate asks the model for a multiple-choice quiz. Every failure after the document lookup
// is reported as ErrQuizUnavailable; the question count is not enforced.
func (s *QuizService) Generate(ctx context.Context, documentID uint) (*Quiz, error) {
	doc, err := loadDocument(ctx, s.docs, documentID)
	if err != nil {
		return nil, err
	}

	texts, err := documentTexts(ctx, s.chunks, doc.ID)
	if err != nil {
		return nil, err
	}
	docContext := rag.AssembleContext(texts, s.budget)
	if rag.IsNoContext(docContext) {
		return nil, fmt.Errorf("%w: document has no readable text", ErrQuizUnavailable)
	}

	raw, err := complete(ctx, s.completer, s.timeout, quizPrompt(doc.Title, docContext, s.questions))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuizUnavailable, err)
	}

	quiz, err := parseQuiz(raw, doc.Title)
	if err != nil {
		return nil, err
	}

	s.activity.Record(model.ActionQuizCompleted, fmt.Sprintf("Generated a %d-question quiz for %s", len(quiz.Questions), doc.Title))
	return quiz, nil
}

// parseQuiz reads the model's quiz loosely: off-type fields are stringified and options given as
// one newline-separated string are split.
func parseQuiz(raw, title string) (*Quiz, error) {
	obj, err := rag.ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuizUnavailable, err)
	}
	items, _ := obj["questions"].([]any)

	quiz := &Quiz{DocumentTitle: rag.TextOf(obj["document_title"]), Questions: make([]QuizQuestion, 0, len(items))}
	if quiz.DocumentTitle == "" {
		quiz.DocumentTitle = title
	}
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			if q := rag.TextOf(item); q != "" {
				quiz.Questions = append(quiz.Questions, QuizQuestion{Question: q, Options: []string{}})
			}
			continue
		}
		quiz.Questions = append(quiz.Questions, QuizQuestion{
			Difficulty:  rag.TextOf(fields["difficulty"]),
			Question:    rag.TextOf(fields["question"]),
			Options:     rag.LinesOf(fields["options"]),
			Answer:      rag.TextOf(fields["answer"]),
			Explanation: rag.TextOf(fields["explanation"]),
			Source:      rag.TextOf(fields["source"]),
		})
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: model returned no questions", ErrQuizUnavailable)
	}
	return quiz, nil
}

// FailedQuiz is the zero-question payload returned when soft quiz errors are enabled.
func FailedQuiz(title string, err error) *Quiz {
	return &Quiz{DocumentTitle: title, Questions: []QuizQuestion{}, Error: err.Error()}
}
