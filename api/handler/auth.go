package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/pkg/httpcontext"
	authUC "github.com/tasknest/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc         *authUC.UseCase
	cookieTTL  time.Duration
	production bool
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, cookieTTL time.Duration, production bool) *AuthHandler {
	if cookieTTL <= 0 {
		cookieTTL = 24 * time.Hour
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookieTTL:   cookieTTL,
		production:  production,
	}
}

// Register creates an account, sets the session cookie and returns the new
// user with the token.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, tokenString, err := h.uc.Register(stdCtx, req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, tokenString)
	h.respondSuccess(ctx, http.StatusCreated, transport.AuthResponse{
		User:  transport.NewUserPayload(user),
		Token: tokenString,
	})
}

// Login verifies credentials, sets the session cookie and returns the user
// with the token.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, tokenString, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, tokenString)
	h.respondSuccess(ctx, http.StatusOK, transport.AuthResponse{
		User:  transport.NewUserPayload(user),
		Token: tokenString,
	})
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; no server-side state is touched, so this always succeeds.
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	h.clearSessionCookie(ctx)
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookie(ctx *fasthttp.RequestCtx, value string) {
	cookie := h.newSessionCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetValue(value)
	cookie.SetMaxAge(int(h.cookieTTL.Seconds()))
	ctx.Response.Header.SetCookie(cookie)
}

func (h *AuthHandler) clearSessionCookie(ctx *fasthttp.RequestCtx) {
	cookie := h.newSessionCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetValue("")
	cookie.SetExpire(fasthttp.CookieExpireDelete)
	ctx.Response.Header.SetCookie(cookie)
}

// newSessionCookie applies the flags shared by issue and clear: cross-site
// secure cookies in production, lax plain cookies in development.
func (h *AuthHandler) newSessionCookie() *fasthttp.Cookie {
	cookie := fasthttp.AcquireCookie()
	cookie.SetKey(middleware.CookieName)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	if h.production {
		cookie.SetSecure(true)
		cookie.SetSameSite(fasthttp.CookieSameSiteNoneMode)
	} else {
		cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	}
	return cookie
}
