package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/internal/middleware"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
	appLogger "github.com/fastygo/tasktrack/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload.Bytes())
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

// respondError answers with the error's code and stable message. Causes of
// server-side failures are logged, never returned.
func (h baseHandler) respondError(stdCtx context.Context, ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.String("code", code),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
	}
	h.respondJSON(ctx, status, transport.NewError(code, domain.PublicMessage(err), &transport.ErrorMeta{
		RequestID: appLogger.RequestIDFromContext(stdCtx),
	}))
}

// identity returns the caller resolved by the auth middleware, answering 401
// when the route was mounted without it.
func (h baseHandler) identity(ctx *fasthttp.RequestCtx) (domain.Identity, bool) {
	identity, ok := httpcontext.IdentityFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized,
			transport.NewError(string(domain.ErrCodeUnauthenticated), domain.ErrUnauthenticated.Message, nil))
	}
	return identity, ok
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeInvalid, domain.ErrCodeInvalidQuery, domain.ErrCodeEmailTaken:
		return http.StatusBadRequest, string(code)
	case domain.ErrCodeUnauthenticated, domain.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized, string(code)
	case domain.ErrCodeUserNotFound, domain.ErrCodeTaskNotFound:
		return http.StatusNotFound, string(code)
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, string(code)
	default:
		return http.StatusInternalServerError, string(code)
	}
}

// CookiePolicy controls how the session cookie is written.
type CookiePolicy struct {
	Secure bool
	Strict bool
}

// NewCookiePolicy returns Secure, SameSite=Strict cookies in production and
// SameSite=Lax elsewhere.
func NewCookiePolicy(production bool) CookiePolicy {
	return CookiePolicy{Secure: production, Strict: production}
}

func (p CookiePolicy) set(ctx *fasthttp.RequestCtx, value string, expires time.Time) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)

	c.SetKey(middleware.SessionCookie)
	c.SetValue(value)
	c.SetPath("/")
	c.SetHTTPOnly(true)
	c.SetSecure(p.Secure)
	if p.Strict {
		c.SetSameSite(fasthttp.CookieSameSiteStrictMode)
	} else {
		c.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	}
	c.SetExpire(expires)
	ctx.Response.Header.SetCookie(c)
}

func (p CookiePolicy) clear(ctx *fasthttp.RequestCtx) {
	p.set(ctx, "", time.Unix(0, 0).UTC())
}
