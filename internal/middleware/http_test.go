package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}
	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mark("a"), mark("b"))
	h(&fasthttp.RequestCtx{})
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := Recover(zap.New(core))(func(*fasthttp.RequestCtx) { panic("boom") })

	var ctx fasthttp.RequestCtx
	h(&ctx)
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), `"code":"INTERNAL"`)
	assert.Equal(t, 1, logs.Len())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := AccessLog(zap.New(core))(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(http.StatusCreated) })

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(http.MethodPost)
	ctx.Request.SetRequestURI("/api/v1/tasks")
	h(&ctx)

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "/api/v1/tasks", fields["path"])
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	next := func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(http.StatusOK) }
	h := CORS("http://localhost:3000/")(next)

	var preflight fasthttp.RequestCtx
	preflight.Request.Header.SetMethod(http.MethodOptions)
	preflight.Request.Header.Set(fasthttp.HeaderOrigin, "http://localhost:3000")
	preflight.Request.Header.Set(fasthttp.HeaderAccessControlRequestMethod, http.MethodPut)
	h(&preflight)
	assert.Equal(t, http.StatusNoContent, preflight.Response.StatusCode())
	assert.Equal(t, "http://localhost:3000", string(preflight.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin)))
	assert.Equal(t, "true", string(preflight.Response.Header.Peek(fasthttp.HeaderAccessControlAllowCredentials)))

	var foreign fasthttp.RequestCtx
	foreign.Request.Header.Set(fasthttp.HeaderOrigin, "http://evil.example")
	h(&foreign)
	assert.Equal(t, http.StatusOK, foreign.Response.StatusCode())
	assert.Empty(t, foreign.Response.Header.Peek(fasthttp.HeaderAccessControlAllowOrigin))
}

func TestSecurityHeaders(t *testing.T) {
	var ctx fasthttp.RequestCtx
	SecurityHeaders(true)(func(*fasthttp.RequestCtx) {})(&ctx)
	assert.Equal(t, "nosniff", string(ctx.Response.Header.Peek(fasthttp.HeaderXContentTypeOptions)))
	assert.NotEmpty(t, ctx.Response.Header.Peek(fasthttp.HeaderStrictTransportSecurity))

	var dev fasthttp.RequestCtx
	SecurityHeaders(false)(func(*fasthttp.RequestCtx) {})(&dev)
	assert.Empty(t, dev.Response.Header.Peek(fasthttp.HeaderStrictTransportSecurity))
}
