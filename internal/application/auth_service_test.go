package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-notes/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-notes/pkg/helpers"
	"github.com/oksasatya/go-ddd-notes/pkg/mailer"
)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return p.err
}

func newAuthService(jobs JobPublisher) *AuthService {
	return NewAuthService(
		memory.NewUserRepository(),
		helpers.NewJWTManager("test-secret", time.Hour),
		jobs,
		"Notes",
		helpers.NewNopLogger(),
	)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newAuthService(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}, MsgRegisterFieldsRequired},
		{"missing password", RegisterInput{Name: "A", Email: "a@b.co"}, MsgRegisterFieldsRequired},
		{"bad email", RegisterInput{Name: "A", Email: "a@b", Password: "secret1"}, MsgInvalidEmail},
		{"email with space", RegisterInput{Name: "A", Email: "a b@c.io", Password: "secret1"}, MsgInvalidEmail},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"}, MsgPasswordTooShort},
		{"password over bcrypt limit", RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73)}, MsgPasswordTooLong},
		{"multibyte password over limit", RegisterInput{Name: "A", Email: "a@b.co", Password: strings.Repeat("é", 37)}, MsgPasswordTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestAuthService_RegisterLoginResolve(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newAuthService(pub)
	ctx := context.Background()

	sess, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "Ana", sess.User.Name)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, time.Minute)

	require.Len(t, pub.jobs, 1)
	job, ok := pub.jobs[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", job.To)
	assert.True(t, job.UsesTemplate())

	_, err = svc.Register(ctx, RegisterInput{Name: "Other", Email: "ana@example.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.User, login.User)

	me, err := svc.Resolve(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User, *me)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthService(nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPwd := svc.Login(ctx, "ana@example.com", "wrong-pass")
	_, unknown := svc.Login(ctx, "nobody@example.com", "secret1")

	assert.ErrorIs(t, wrongPwd, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), unknown.Error())

	_, err = svc.Login(ctx, "", "secret1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgLoginFieldsRequired, err.Error())
}

func TestAuthService_Resolve(t *testing.T) {
	svc := newAuthService(nil)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := helpers.NewJWTManager("other-secret", time.Hour)
	forged, _, err := other.GenerateToken("u1", "x@y.z")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	orphan, _, err := svc.JWT.GenerateToken("missing-user", "x@y.z")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, orphan)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_PublishFailureDoesNotFailRegister(t *testing.T) {
	svc := newAuthService(&recordingPublisher{err: errors.New("broker down")})

	sess, err := svc.Register(context.Background(), RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
}

func TestAuthService_RegisterAcceptsPasswordAtBcryptLimit(t *testing.T) {
	svc := newAuthService(nil)
	ctx := context.Background()
	pw := strings.Repeat("k", 72)

	_, err := svc.Register(ctx, RegisterInput{Name: "Max", Email: "max@example.com", Password: pw})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "max@example.com", pw)
	assert.NoError(t, err)
}
