package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studymate/internal/app"
	"studymate/internal/transport/http/response"
)

// writeError maps service errors to status codes. Unclassified errors are logged and hidden.
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, app.ErrExtraction):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeUnprocessable, err.Error())
	case errors.Is(err, app.ErrQuizUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeQuizUnavailable, err.Error())
	case errors.Is(err, app.ErrGeneration), errors.Is(err, app.ErrEmbedding):
		log.Printf("%s failed: %v", op, err)
		response.Error(c, http.StatusBadGateway, response.CodeBadGateway, op+" failed: model service unavailable")
	case errors.Is(err, app.ErrStorage):
		log.Printf("%s failed: %v", op, err)
		response.Error(c, http.StatusInternalServerError, response.CodeStorage, op+" failed: storage error")
	default:
		log.Printf("%s failed: %v", op, err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, op+" failed")
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return 0, false
	}
	return uint(id), true
}
