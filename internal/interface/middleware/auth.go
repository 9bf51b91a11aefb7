package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
)

// Auth resolves the session cookie to a user. Every session failure is
// reported the same way so callers cannot tell a forged token from an
// expired one. It sets userID, userName, and userEmail in the Gin context on success.
func Auth(auth *application.AuthService, cookies *helpers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Resolve(c.Request.Context(), cookies.Token(c))
		if err != nil {
			if isSessionError(err) {
				response.Abort(c, http.StatusUnauthorized, application.ErrNotAuthenticated.Error())
				return
			}
			response.Abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.Set(CtxUserIDKey, user.ID)
		c.Set(CtxUserNameKey, user.Name)
		c.Set(CtxUserEmailKey, user.Email)
		c.Next()
	}
}

func isSessionError(err error) bool {
	return errors.Is(err, application.ErrNotAuthenticated) ||
		errors.Is(err, application.ErrInvalidToken) ||
		errors.Is(err, application.ErrUserNotFound)
}
