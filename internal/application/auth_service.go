package application

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-notes/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-notes/internal/domain/repository"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-notes/pkg/mailer/templates"
	"github.com/oksasatya/go-ddd-notes/pkg/validation"
)

// JobPublisher enqueues background jobs (RabbitMQ in production)
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthService struct {
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
	Jobs    JobPublisher // optional
	AppName string
	Logger  *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, jobs JobPublisher, appName string, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Jobs: jobs, AppName: appName, Logger: logger}
}

// Session is the outcome of a successful register or login
type Session struct {
	User      entity.PublicUser
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (in RegisterInput) validate() error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return invalid(MsgRegisterFieldsRequired)
	}
	if !validation.IsBasicEmail(in.Email) {
		return invalid(MsgInvalidEmail)
	}
	if utf8.RuneCountInString(in.Password) < validation.MinPasswordLength {
		return invalid(MsgPasswordTooShort)
	}
	if len(in.Password) > validation.MaxPasswordBytes {
		return invalid(MsgPasswordTooLong)
	}
	return nil
}

// Register creates the account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	exists, err := s.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	sess, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.enqueueWelcome(ctx, u)
	return sess, nil
}

// Login never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, invalid(MsgLoginFieldsRequired)
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		helpers.BurnCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Resolve maps a session token to the current public user record.
func (s *AuthService) Resolve(ctx context.Context, token string) (*entity.PublicUser, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (s *AuthService) issue(u *entity.User) (*Session, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID, u.Email)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, err
	}
	return &Session{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Jobs == nil {
		return
	}
	data := tpl.NewWelcomeData(s.AppName, u.Name, u.Email, tpl.WithTime(time.Now()))
	job := mailer.EmailJob{To: u.Email, Template: tpl.Welcome, Data: data}
	if err := s.Jobs.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue welcome email failed")
	}
}
