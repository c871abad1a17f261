package app

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent with every completion.
const SystemPrompt = "You are StudyMate, an assistant that helps students learn from their own documents."

// RefusalAnswer is the fixed reply when the document holds nothing relevant.
const RefusalAnswer = "I could not find information about that in this document."

func summaryPrompt(title, context string) string {
	var b strings.Builder
	b.WriteString("Summarize the study document below into clear sections.\n")
	b.WriteString("Respond with JSON only, using exactly this shape:\n")
	b.WriteString(`{"document_title": "...", "sections": [{"heading": "...", "summary": ["bullet", "bullet"]}]}`)
	b.WriteString("\nUse only the document content. Keep bullets short and factual.\n\n")
	fmt.Fprintf(&b, "Document title: %s\n\nDocument content:\n%s\n", title, context)
	return b.String()
}

func chatPrompt(question, context string) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below.\n")
	fmt.Fprintf(&b, "If the context does not contain the answer, reply exactly: %q\n", RefusalAnswer)
	b.WriteString("Do not use outside knowledge.\n\n")
	fmt.Fprintf(&b, "Context:\n%s\n\nQuestion: %s\n\nAnswer:", context, question)
	return b.String()
}

func quizPrompt(title, context string, questions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d multiple-choice questions about the study document below.\n", questions)
	b.WriteString("Mix easy, medium and hard difficulty. Each question has exactly 4 options and one correct answer given as its letter.\n")
	b.WriteString("Respond with JSON only, using exactly this shape:\n")
	b.WriteString(`{"document_title": "...", "questions": [{"difficulty": "easy", "question": "...", "options": ["A) ...", "B) ...", "C) ...", "D) ..."], "answer": "A", "explanation": "...", "source": "short quote from the document"}]}`)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Document title: %s\n\nDocument content:\n%s\n", title, context)
	return b.String()
}
