package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/application"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/response"
	"github.com/oksasatya/go-ddd-notes/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,basicemail"`
	Password string `json:"password" binding:"required,pwd,pwdmax"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/auth
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		if validation.IsBodyError(err) {
			badBody(c, err)
			return
		}
		response.Error(c, http.StatusBadRequest, registerMessage(err), validation.ToDetails(err))
		return
	}

	sess, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	registrations.Add(1)
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	helpers.RequestLogger(h.Logger, c).WithField("user_id", sess.User.ID).Info("user registered")
	response.User(c, http.StatusCreated, sess.User)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		if validation.IsBodyError(err) {
			badBody(c, err)
			return
		}
		response.Error(c, http.StatusBadRequest, application.MsgLoginFieldsRequired, validation.ToDetails(err))
		return
	}

	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			failedLogins.Add(1)
		}
		fail(c, h.Logger, err)
		return
	}
	logins.Add(1)
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.User(c, http.StatusOK, sess.User)
}

// Logout POST /api/auth/logout always succeeds
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Svc.Resolve(c.Request.Context(), h.Cookies.Token(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.User(c, http.StatusOK, *user)
}

// registerMessage picks the first rule that failed in field-check order:
// presence, then email format, then password length.
func registerMessage(err error) string {
	tags := validation.FailedTags(err)
	for _, tag := range tags {
		if tag == "required" {
			return application.MsgRegisterFieldsRequired
		}
	}
	if _, ok := tags["email"]; ok {
		return application.MsgInvalidEmail
	}
	switch tags["password"] {
	case "":
	case "pwdmax":
		return application.MsgPasswordTooLong
	default:
		return application.MsgPasswordTooShort
	}
	return msgInvalidBody
}
