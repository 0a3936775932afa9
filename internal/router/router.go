package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasknest/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Todo   *apiHandler.TodoHandler
	Health *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New wires the route table. Every /todo route sits behind the auth gate;
// the /user routes and /health are open.
func New(handlers Handlers, auth Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.POST("/user/register", handlers.Auth.Register)
	r.POST("/user/login", handlers.Auth.Login)
	r.GET("/user/logout", handlers.Auth.Logout)

	r.POST("/todo/create", auth(handlers.Todo.Create))
	r.GET("/todo/fetch", auth(handlers.Todo.Fetch))
	r.PUT("/todo/update/{id}", auth(handlers.Todo.Update))
	r.DELETE("/todo/delete/{id}", auth(handlers.Todo.Delete))

	return r
}

// Handler applies the global middleware chain around the route table.
func Handler(r *router.Router, cors Middleware) fasthttp.RequestHandler {
	if cors == nil {
		return r.Handler
	}
	return cors(r.Handler)
}
