package router

import (
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/tasktrack/api/handler"
	"github.com/fastygo/tasktrack/api/transport"
	"github.com/fastygo/tasktrack/internal/middleware"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware middleware.Middleware) *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	r.GET("/api/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	// Auth routes
	v1.POST("/auth/register", handlers.Auth.Register)
	v1.POST("/auth/login", handlers.Auth.Login)
	v1.POST("/auth/logout", handlers.Auth.Logout)

	// Protected routes
	v1.GET("/auth/profile", authMiddleware(handlers.Auth.GetProfile))
	v1.PUT("/auth/profile", authMiddleware(handlers.Auth.UpdateProfile))

	v1.GET("/tasks", authMiddleware(handlers.Task.List))
	v1.POST("/tasks", authMiddleware(handlers.Task.Create))
	v1.GET("/tasks/stats", authMiddleware(handlers.Task.Stats))
	v1.GET("/tasks/search", authMiddleware(handlers.Task.Search))
	v1.PUT("/tasks/{id}", authMiddleware(handlers.Task.Update))
	v1.DELETE("/tasks/{id}", authMiddleware(handlers.Task.Delete))

	r.NotFound = jsonError(http.StatusNotFound, "NOT_FOUND", "route not found")
	r.MethodNotAllowed = jsonError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")

	return r
}

func jsonError(status int, code, message string) fasthttp.RequestHandler {
	body := transport.NewError(code, message, nil).Bytes()
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(status)
		ctx.SetBody(body)
	}
}
