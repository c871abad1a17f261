package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"studymate/internal/model"
	"studymate/internal/rag"
	"studymate/internal/repository"
)

const fallbackHeading = "Summary"

const emptyDocumentNote = "No readable text was found in this document."

type SummaryCache interface {
	Get(ctx context.Context, documentID uint, dest any) (bool, error)
	Set(ctx context.Context, documentID uint, summary any) error
}

type SummarySection struct {
	Heading string    `json:"heading"`
	Summary rag.Lines `json:"summary"`
}

type Summary struct {
	DocumentTitle string           `json:"document_title"`
	TotalSections int              `json:"total_sections"`
	Sections      []SummarySection `json:"sections"`
}

type SummaryService struct {
	docs      *repository.DocumentRepository
	chunks    repository.ChunkStore
	completer Completer
	cache     SummaryCache
	activity  ActivityLogger
	budget    int
	timeout   time.Duration
}

func NewSummaryService(
	docs *repository.DocumentRepository,
	chunks repository.ChunkStore,
	completer Completer,
	cache SummaryCache,
	activity ActivityLogger,
	budget int,
	timeout time.Duration,
) *SummaryService {
	if budget <= 0 {
		budget = rag.SummaryContextBudget
	}
	return &SummaryService{
		docs:      docs,
		chunks:    chunks,
		completer: completer,
		cache:     cache,
		activity:  activity,
		budget:    budget,
		timeout:   timeout,
	}
}

// Summarize builds a sectioned summary from the document's chunks. Output that is not valid
// JSON is kept as a single free-text section.
func (s *SummaryService) Summarize(ctx context.Context, documentID uint) (*Summary, error) {
	doc, err := loadDocument(ctx, s.docs, documentID)
	if err != nil {
		return nil, err
	}

	var cached Summary
	if s.cache != nil {
		found, err := s.cache.Get(ctx, doc.ID, &cached)
		if err != nil {
			log.Printf("read summary cache for document %d failed: %v", doc.ID, err)
		} else if found {
			s.activity.Record(model.ActionSummary, fmt.Sprintf("Summarized %s", doc.Title))
			return &cached, nil
		}
	}

	texts, err := documentTexts(ctx, s.chunks, doc.ID)
	if err != nil {
		return nil, err
	}
	docContext := rag.AssembleContext(texts, s.budget)
	if rag.IsNoContext(docContext) {
		return newSummary(doc.Title, []SummarySection{{Heading: fallbackHeading, Summary: rag.Lines{emptyDocumentNote}}}), nil
	}

	raw, err := complete(ctx, s.completer, s.timeout, summaryPrompt(doc.Title, docContext))
	if err != nil {
		return nil, err
	}
	summary := parseSummary(raw, doc.Title)

	if s.cache != nil {
		if err := s.cache.Set(ctx, doc.ID, summary); err != nil {
			log.Printf("write summary cache for document %d failed: %v", doc.ID, err)
		}
	}
	s.activity.Record(model.ActionSummary, fmt.Sprintf("Summarized %s", doc.Title))
	return summary, nil
}

func parseSummary(raw, title string) *Summary {
	var parsed struct {
		DocumentTitle rag.Text          `json:"document_title"`
		Sections      []json.RawMessage `json:"sections"`
	}
	if err := rag.Decode(raw, &parsed); err != nil {
		return fallbackSummary(raw, title)
	}

	sections := make([]SummarySection, 0, len(parsed.Sections))
	for i, item := range parsed.Sections {
		var section struct {
			Heading rag.Text  `json:"heading"`
			Summary rag.Lines `json:"summary"`
		}
		if err := json.Unmarshal(item, &section); err != nil {
			log.Printf("drop malformed summary section %d: %v", i, err)
			continue
		}
		if section.Summary == nil {
			section.Summary = rag.Lines{}
		}
		sections = append(sections, SummarySection{Heading: string(section.Heading), Summary: section.Summary})
	}
	if len(sections) == 0 {
		return fallbackSummary(raw, title)
	}
	if t := string(parsed.DocumentTitle); t != "" {
		title = t
	}
	return newSummary(title, sections)
}

func fallbackSummary(raw, title string) *Summary {
	return newSummary(title, []SummarySection{{Heading: fallbackHeading, Summary: rag.Lines{strings.TrimSpace(raw)}}})
}

func newSummary(title string, sections []SummarySection) *Summary {
	return &Summary{
		DocumentTitle: title,
		TotalSections: len(sections),
		Sections:      sections,
	}
}
