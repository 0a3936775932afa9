package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/token"
)

// CookieName is the session cookie carrying the signed identity token.
const CookieName = "token"

// UserKey is the RequestCtx user value under which the authenticated user is
// stored for downstream handlers.
const UserKey = "auth_user"

const identifyTimeout = 5 * time.Second

// Identifier resolves a verified token subject to a live user record.
type Identifier interface {
	Identify(ctx context.Context, userID string) (*domain.User, error)
}

// Auth gates every owned-resource route. It reads the token cookie, verifies
// signature and expiry, loads the user and attaches it to the request. It
// writes no stored state; the only outcomes are 401 or the next handler.
func Auth(tokens *token.Manager, identities Identifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := string(ctx.Request.Header.Cookie(CookieName))
			if tokenString == "" {
				rejectUnauthorized(ctx, domain.ErrAuthRequired)
				return
			}

			userID, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Warn("token verification failed", zap.Error(err))
				rejectUnauthorized(ctx, domain.ErrInvalidToken)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), identifyTimeout)
			defer cancel()

			user, err := identities.Identify(stdCtx, userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					rejectUnauthorized(ctx, domain.ErrInvalidToken)
					return
				}
				logger.Error("identity lookup failed", zap.Error(err))
				respondJSON(ctx, http.StatusInternalServerError,
					transport.NewError(string(domain.ErrCodeInternal), "internal error"))
				return
			}

			ctx.SetUserValue(UserKey, user)
			next(ctx)
		}
	}
}

// AuthenticatedUser returns the user attached by Auth, or nil outside the gate.
func AuthenticatedUser(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(UserKey).(*domain.User)
	return user
}

func rejectUnauthorized(ctx *fasthttp.RequestCtx, err *domain.Error) {
	respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(err.Code), err.Message))
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
