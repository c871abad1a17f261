package rag

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%05d", i)
	}
	return out
}

func TestSplitText_ReproducesTokens(t *testing.T) {
	inputs := []string{
		"a b c",
		"  leading and trailing   spaces  ",
		"multi\nline\ttext with\r\nmixed whitespace",
		strings.Join(words(500), " "),
	}
	for _, in := range inputs {
		chunks := SplitText(in, 50)
		var got []string
		for _, c := range chunks {
			assert.NotEmpty(t, c)
			got = append(got, strings.Fields(c)...)
		}
		assert.Equal(t, strings.Fields(in), got)
	}
}

func TestSplitText_EmptyInput(t *testing.T) {
	assert.Empty(t, SplitText("", 700))
	assert.Empty(t, SplitText(" \n\t  ", 700))
}

func TestSplitText_SingleParagraphOfAboutTwoThousandChars(t *testing.T) {
	text := strings.Join(words(300), " ")
	require.Equal(t, 2099, len(text))

	chunks := SplitText(text, 700)
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0]), 101)
	assert.Len(t, strings.Fields(chunks[1]), 101)
	assert.Len(t, strings.Fields(chunks[2]), 98)
}

func TestSplitText_FlushesWhenThresholdReached(t *testing.T) {
	// "aaaa bbbb" is 9 characters, which reaches the threshold exactly.
	chunks := SplitText("aaaa bbbb cccc", 9)
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, chunks)
}

func TestSplitText_OvershootByTriggeringToken(t *testing.T) {
	long := strings.Repeat("x", 40)
	chunks := SplitText("tiny "+long+" tail", 10)
	require.Len(t, chunks, 2)
	assert.Equal(t, "tiny "+long, chunks[0])
	assert.Equal(t, "tail", chunks[1])
}

func TestSplitText_CountsRunesNotBytes(t *testing.T) {
	token := "ééééé" // 5 runes, 10 bytes
	chunks := SplitText(token+" "+token, 11)
	require.Len(t, chunks, 1)
	assert.Equal(t, 11, utf8.RuneCountInString(chunks[0]))
}

func TestSplitText_NonPositiveThresholdUsesDefault(t *testing.T) {
	text := strings.Join(words(300), " ")
	assert.Equal(t, SplitText(text, DefaultChunkSize), SplitText(text, 0))
}

func TestChunks_StopsWhenConsumerBreaks(t *testing.T) {
	seen := 0
	for range Chunks(strings.Join(words(300), " "), 10) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}
