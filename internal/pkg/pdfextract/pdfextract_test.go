package pdfextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_RejectsNonPDF(t *testing.T) {
	_, err := New().Extract([]byte("this is plainly not a pdf document"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_RejectsEmpty(t *testing.T) {
	_, err := New().Extract(nil)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_RejectsTruncatedPDF(t *testing.T) {
	_, err := New().Extract([]byte("%PDF-1.4\n1 0 obj\n<<"))
	assert.ErrorIs(t, err, ErrExtraction)
}
