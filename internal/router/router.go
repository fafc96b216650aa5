package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/teamboard/api/handler"
	"github.com/fastygo/teamboard/internal/middleware"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Points  *apiHandler.PointsHandler
	Stats   *apiHandler.StatsHandler
	Health  *apiHandler.HealthHandler
}

type Options struct {
	EnableMetrics bool
	EnablePprof   bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	public := func(method, path string, h fasthttp.RequestHandler) {
		r.Handle(method, path, middleware.Instrument(path, h))
	}
	protected := func(method, path string, h fasthttp.RequestHandler) {
		r.Handle(method, path, middleware.Instrument(path, authMiddleware(h)))
	}

	r.GET("/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Auth routes
	public(fasthttp.MethodPost, "/api/v1/auth/register", handlers.Auth.Register)
	public(fasthttp.MethodPost, "/api/v1/auth/login", handlers.Auth.Login)
	protected(fasthttp.MethodPost, "/api/v1/auth/refresh", handlers.Auth.Refresh)
	protected(fasthttp.MethodPost, "/api/v1/auth/logout", handlers.Auth.Logout)

	// Protected routes
	protected(fasthttp.MethodGet, "/api/v1/profile", handlers.Profile.GetProfile)
	protected(fasthttp.MethodPut, "/api/v1/profile", handlers.Profile.UpdateProfile)

	protected(fasthttp.MethodGet, "/api/v1/tasks", handlers.Task.GetTasks)
	protected(fasthttp.MethodPost, "/api/v1/tasks", handlers.Task.CreateTask)
	protected(fasthttp.MethodGet, "/api/v1/tasks/{id}", handlers.Task.GetTask)
	protected(fasthttp.MethodPut, "/api/v1/tasks/{id}", handlers.Task.UpdateTask)
	protected(fasthttp.MethodDelete, "/api/v1/tasks/{id}", handlers.Task.DeleteTask)
	protected(fasthttp.MethodPatch, "/api/v1/tasks/{id}/status", handlers.Task.UpdateStatus)
	protected(fasthttp.MethodGet, "/api/v1/tasks/{id}/comments", handlers.Task.GetComments)
	protected(fasthttp.MethodPost, "/api/v1/tasks/{id}/comments", handlers.Task.AddComment)

	protected(fasthttp.MethodGet, "/api/v1/users/{id}/points", handlers.Points.History)
	protected(fasthttp.MethodPost, "/api/v1/users/{id}/points", handlers.Points.Adjust)
	protected(fasthttp.MethodGet, "/api/v1/users/{id}/badges", handlers.Points.Earned)
	protected(fasthttp.MethodGet, "/api/v1/badges", handlers.Points.Catalog)

	protected(fasthttp.MethodGet, "/api/v1/ranking", handlers.Stats.Ranking)
	protected(fasthttp.MethodGet, "/api/v1/stats/dashboard", handlers.Stats.Dashboard)
	protected(fasthttp.MethodGet, "/api/v1/activity", handlers.Stats.Activity)

	return r
}
