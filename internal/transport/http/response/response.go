package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest       = 40000
	CodeNotFound         = 40400
	CodePayloadTooLarge  = 41300
	CodeUnprocessable    = 42200
	CodeInternalServer   = 50000
	CodeStorage          = 50001
	CodeBadGateway       = 50200
	CodeQuizUnavailable  = 50201
	CodeServiceUnhealthy = 50300
)

// APIResponse is the error envelope. Successful calls write their payload directly.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
