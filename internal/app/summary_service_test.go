package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/model"
	"studymate/internal/rag"
)

func (e *testEnv) summaryService() *SummaryService {
	return NewSummaryService(e.docs, e.chunks, e.completer, e.summaries, e.activity, rag.SummaryContextBudget, time.Second)
}

func TestSummaryService_ParsesStructuredOutput(t *testing.T) {
	env := newTestEnv(t)
	res := env.upload(t, "cells", paragraph(120))
	env.completer.reply = "Here you go:\n```json\n" +
		`{"document_title":"Cell Biology","sections":[{"heading":"Membranes","summary":["lipid bilayer","proteins"]},{"heading":"Organelles","summary":"nucleus\n\nmitochondria\n"}]}` +
		"\n```"

	got, err := env.summaryService().Summarize(context.Background(), res.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, "Cell Biology", got.DocumentTitle)
	assert.Equal(t, 2, got.TotalSections)
	assert.Equal(t, rag.Lines{"lipid bilayer", "proteins"}, got.Sections[0].Summary)
	assert.Equal(t, rag.Lines{"nucleus", "mitochondria"}, got.Sections[1].Summary)
	assert.Contains(t, env.completer.prompts[0], "w00119")
	assert.Equal(t, []model.ActivityAction{model.ActionUpload, model.ActionSummary}, env.activity.actions())
}

func TestSummaryService_KeepsSectionsWithOffTypeValues(t *testing.T) {
	env := newTestEnv(t)
	res := env.upload(t, "cells", paragraph(60))
	env.completer.reply = `{"sections":[{"heading":"Intro","summary":["a","b"]},{"heading":"Num","summary":3},` +
		`{"heading":7},"stray text"]}`

	got, err := env.summaryService().Summarize(context.Background(), res.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, "cells", got.DocumentTitle)
	require.Equal(t, 3, got.TotalSections)
	assert.Equal(t, rag.Lines{"a", "b"}, got.Sections[0].Summary)
	assert.Equal(t, "Num", got.Sections[1].Heading)
	assert.Equal(t, rag.Lines{"3"}, got.Sections[1].Summary)
	assert.Equal(t, "7", got.Sections[2].Heading)
	assert.Equal(t, rag.Lines{}, got.Sections[2].Summary)
}

func TestSummaryService_FallsBackToRawText(t *testing.T) {
	env := newTestEnv(t)
	res := env.upload(t, "notes", "photosynthesis converts light")
	env.completer.reply = "  Plants turn light into sugar.  "

	got, err := env.summaryService().Summarize(context.Background(), res.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, "notes", got.DocumentTitle)
	require.Equal(t, 1, got.TotalSections)
	assert.Equal(t, "Summary", got.Sections[0].Heading)
	assert.Equal(t, rag.Lines{"Plants turn light into sugar."}, got.Sections[0].Summary)
}

func TestSummaryService_UsesCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	res := env.upload(t, "notes", "some content")
	env.completer.reply = `{"document_title":"Notes","sections":[{"heading":"A","summary":["b"]}]}`
	svc := env.summaryService()

	first, err := svc.Summarize(ctx, res.Document.ID)
	require.NoError(t, err)
	second, err := svc.Summarize(ctx, res.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.completer.calls())
}

func TestSummaryService_EmptyDocumentSkipsModel(t *testing.T) {
	env := newTestEnv(t)
	res := env.upload(t, "blank", "")

	got, err := env.summaryService().Summarize(context.Background(), res.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalSections)
	assert.Equal(t, rag.Lines{emptyDocumentNote}, got.Sections[0].Summary)
	assert.Zero(t, env.completer.calls())
}

func TestSummaryService_Errors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.summaryService()

	_, err := svc.Summarize(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)

	res := env.upload(t, "notes", "text")
	env.completer.err = errors.New("upstream 500")
	_, err = svc.Summarize(context.Background(), res.Document.ID)
	assert.ErrorIs(t, err, ErrGeneration)
}
