package app

import (
	"errors"

	"studymate/internal/pkg/pdfextract"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("document not found")
	ErrStorage         = errors.New("storage failure")
	ErrEmbedding       = errors.New("embedding failed")
	ErrGeneration      = errors.New("completion failed")
	ErrQuizUnavailable = errors.New("quiz generation failed")

	// ErrExtraction marks documents whose text could not be read.
	ErrExtraction = pdfextract.ErrExtraction
)
