package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/pkg/token"
	authUC "github.com/tasknest/backend/usecase/auth"
)

type memUserRepo struct {
	seq     int
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
	}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = &stored
	return user, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	out.Password = ""
	out.Token = ""
	return &out, nil
}

func (r *memUserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (r *memUserRepo) SaveToken(ctx context.Context, id, tok string) error {
	user, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Token = tok
	return nil
}

func newAuthHandler(t *testing.T, production bool) (*AuthHandler, *memUserRepo) {
	t.Helper()
	repo := newMemUserRepo()
	tokens := token.NewManager("test-secret", time.Hour)
	uc := authUC.New(repo, nil, tokens, nil)
	return NewAuthHandler(uc, nil, nil, time.Hour, production), repo
}

func postCtx(path string, body interface{}) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		payload, _ := json.Marshal(body)
		ctx.Request.SetBody(payload)
	}
	return ctx
}

func sessionCookie(t *testing.T, ctx *fasthttp.RequestCtx) *fasthttp.Cookie {
	t.Helper()
	cookie := fasthttp.AcquireCookie()
	t.Cleanup(func() { fasthttp.ReleaseCookie(cookie) })
	cookie.SetKey(middleware.CookieName)
	require.True(t, ctx.Response.Header.Cookie(cookie), "session cookie not set")
	return cookie
}

func TestRegisterSetsCookieAndStripsSecrets(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, false)
	ctx := postCtx("/user/register", transport.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	h.Register(ctx)

	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())

	var env struct {
		Status string                 `json:"status"`
		Data   transport.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	require.Equal(t, "success", env.Status)
	require.Equal(t, "alice", env.Data.User.Username)
	require.NotEmpty(t, env.Data.Token)
	require.NotContains(t, string(ctx.Response.Body()), "hunter22")
	require.NotContains(t, string(ctx.Response.Body()), "password")

	cookie := sessionCookie(t, ctx)
	require.Equal(t, env.Data.Token, string(cookie.Value()))
	require.True(t, cookie.HTTPOnly())
	require.False(t, cookie.Secure())
	require.Equal(t, "/", string(cookie.Path()))
}

func TestProductionCookieFlags(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, true)
	ctx := postCtx("/user/register", transport.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	h.Register(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())

	cookie := sessionCookie(t, ctx)
	require.True(t, cookie.HTTPOnly())
	require.True(t, cookie.Secure())
	require.Equal(t, fasthttp.CookieSameSiteNoneMode, cookie.SameSite())
}

func TestRegisterValidationError(t *testing.T) {
	t.Parallel()

	h, repo := newAuthHandler(t, false)
	ctx := postCtx("/user/register", transport.RegisterRequest{
		Username: "al",
		Email:    "alice@example.com",
		Password: "hunter22",
	})

	h.Register(ctx)

	require.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	require.Empty(t, repo.byID)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, false)

	first := postCtx("/user/register", transport.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	h.Register(first)
	require.Equal(t, http.StatusCreated, first.Response.StatusCode())

	second := postCtx("/user/register", transport.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "hunter23",
	})
	h.Register(second)

	require.Equal(t, http.StatusBadRequest, second.Response.StatusCode())
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(second.Response.Body(), &env))
	require.Equal(t, string(domain.ErrCodeConflict), env.Code)
}

func TestLoginFailuresIdentical(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, false)
	h.Register(postCtx("/user/register", transport.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}))

	wrongPw := postCtx("/user/login", transport.LoginRequest{Email: "alice@example.com", Password: "nope"})
	h.Login(wrongPw)

	unknown := postCtx("/user/login", transport.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	h.Login(unknown)

	require.Equal(t, http.StatusUnauthorized, wrongPw.Response.StatusCode())
	require.Equal(t, http.StatusUnauthorized, unknown.Response.StatusCode())
	require.Equal(t, string(wrongPw.Response.Body()), string(unknown.Response.Body()))
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, false)
	h.Register(postCtx("/user/register", transport.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	}))

	ctx := postCtx("/user/login", transport.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	h.Login(ctx)

	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var env struct {
		Data transport.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	require.Equal(t, "alice@example.com", env.Data.User.Email)
	require.NotEmpty(t, env.Data.Token)

	cookie := sessionCookie(t, ctx)
	require.Equal(t, env.Data.Token, string(cookie.Value()))
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	h, _ := newAuthHandler(t, false)

	// No session at all still succeeds.
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/user/logout")

	h.Logout(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	cookie := sessionCookie(t, ctx)
	require.Empty(t, string(cookie.Value()))
	require.True(t, cookie.Expire().Before(time.Now()))
}
