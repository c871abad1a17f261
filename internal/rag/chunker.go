package rag

import (
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the flush threshold in characters.
const DefaultChunkSize = 700

// Chunks lazily splits text into whitespace-token chunks. A chunk is flushed as soon as its
// space-joined length reaches threshold, so it may overshoot by the length of the last token.
// Tokens are never split and empty input yields nothing.
func Chunks(text string, threshold int) iter.Seq[string] {
	if threshold <= 0 {
		threshold = DefaultChunkSize
	}
	return func(yield func(string) bool) {
		var buf []string
		size := 0
		for _, token := range strings.Fields(text) {
			if len(buf) > 0 {
				size++ // joining space
			}
			buf = append(buf, token)
			size += utf8.RuneCountInString(token)
			if size >= threshold {
				if !yield(strings.Join(buf, " ")) {
					return
				}
				buf = buf[:0]
				size = 0
			}
		}
		if len(buf) > 0 {
			yield(strings.Join(buf, " "))
		}
	}
}

// SplitText collects Chunks into a slice.
func SplitText(text string, threshold int) []string {
	return slices.Collect(Chunks(text, threshold))
}
