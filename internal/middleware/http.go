package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/pkg/httpcontext"
)

// Middleware wraps a request handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies mws so that the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover turns a panic into a 500 response.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic while serving request",
						zap.Any("panic", r),
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.ByteString("stack", debug.Stack()),
					)
					ctx.ResetBody()
					writeError(ctx, http.StatusInternalServerError, domain.ErrInternal)
				}
			}()
			next(ctx)
		}
	}
}

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			reqID := httpcontext.RequestID(ctx)
			next(ctx)

			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
			}
			if identity, ok := httpcontext.IdentityFrom(ctx); ok {
				fields = append(fields, zap.String("user_id", identity.UserID))
			}
			if ctx.Response.StatusCode() >= http.StatusInternalServerError {
				logger.Warn("request served", fields...)
				return
			}
			logger.Info("request served", fields...)
		}
	}
}

// CORS allows credentialed requests from the configured client origin and
// answers preflight requests directly.
func CORS(allowedOrigin string) Middleware {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			allowed := origin != "" && allowedOrigin != "" && origin == allowedOrigin
			if allowed {
				h := &ctx.Response.Header
				h.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
				h.Set(fasthttp.HeaderAccessControlAllowCredentials, "true")
				h.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
			}
			if ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0 {
				if allowed {
					h := &ctx.Response.Header
					h.Set(fasthttp.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
					h.Set(fasthttp.HeaderAccessControlAllowHeaders, "Authorization, Content-Type, X-Request-ID")
					h.Set(fasthttp.HeaderAccessControlMaxAge, "600")
				}
				ctx.SetStatusCode(http.StatusNoContent)
				return
			}
			next(ctx)
		}
	}
}

// SecurityHeaders sets the usual hardening headers for a JSON API.
func SecurityHeaders(production bool) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			h := &ctx.Response.Header
			h.Set(fasthttp.HeaderXContentTypeOptions, "nosniff")
			h.Set(fasthttp.HeaderXFrameOptions, "SAMEORIGIN")
			h.Set(fasthttp.HeaderReferrerPolicy, "no-referrer")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			h.Set(fasthttp.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'self'")
			if production {
				h.Set(fasthttp.HeaderStrictTransportSecurity, "max-age=15552000; includeSubDomains")
			}
			next(ctx)
		}
	}
}
