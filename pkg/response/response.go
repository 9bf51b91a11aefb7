package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the failure shape the client reads: {"error": "..."}
type ErrorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageBody acknowledges an operation with no payload
type MessageBody struct {
	Message string `json:"message"`
}

// UserBody wraps a user record: {"user": {...}}
type UserBody[T any] struct {
	User T `json:"user"`
}

func Success[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

func User[T any](ctx *gin.Context, status int, user T) {
	Success(ctx, status, UserBody[T]{User: user})
}

func Message(ctx *gin.Context, status int, message string) {
	Success(ctx, status, MessageBody{Message: message})
}

func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, ErrorBody{Error: message, Details: details})
}

// Abort writes the error and stops the handler chain
func Abort(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, ErrorBody{Error: message})
}
