package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"studymate/internal/app"
	"studymate/internal/transport/http/response"
)

// StudyHandler serves the generation endpoints: summary, chat and quiz.
type StudyHandler struct {
	summaries      *app.SummaryService
	chat           *app.ChatService
	quizzes        *app.QuizService
	documents      *app.DocumentService
	quizSoftErrors bool
}

type ChatRequest struct {
	Question string `json:"question"`
}

func NewStudyHandler(
	summaries *app.SummaryService,
	chat *app.ChatService,
	quizzes *app.QuizService,
	documents *app.DocumentService,
	quizSoftErrors bool,
) *StudyHandler {
	return &StudyHandler{
		summaries:      summaries,
		chat:           chat,
		quizzes:        quizzes,
		documents:      documents,
		quizSoftErrors: quizSoftErrors,
	}
}

func (h *StudyHandler) Summarize(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	summary, err := h.summaries.Summarize(c.Request.Context(), id)
	if err != nil {
		writeError(c, "summarize", err)
		return
	}
	response.OK(c, summary)
}

func (h *StudyHandler) Chat(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	answer, err := h.chat.Ask(c.Request.Context(), id, req.Question)
	if err != nil {
		writeError(c, "chat", err)
		return
	}
	response.OK(c, answer)
}

// Quiz answers generation failures with 502 unless soft errors are enabled, in which case older
// clients get a 200 with an empty quiz and an error field.
func (h *StudyHandler) Quiz(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	quiz, err := h.quizzes.Generate(c.Request.Context(), id)
	if err != nil {
		if h.quizSoftErrors && errors.Is(err, app.ErrQuizUnavailable) {
			title := ""
			if doc, getErr := h.documents.Get(c.Request.Context(), id); getErr == nil {
				title = doc.Title
			}
			c.JSON(http.StatusOK, gin.H{
				"message": "Quiz generation failed",
				"quiz":    app.FailedQuiz(title, err),
			})
			return
		}
		writeError(c, "quiz", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz generated",
		"quiz":    quiz,
	})
}
