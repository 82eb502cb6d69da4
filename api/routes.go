package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

func (s *APIServer) routes() http.Handler {
	router := NewRouter("/api/v1")
	router.router.NotFound = http.HandlerFunc(s.notFoundResponse)
	router.router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowedResponse)

	// Healthcheck
	router.RegisterHandlerFunc(http.MethodGet, "/healthcheck", s.handleHealthCheckGET)

	// Forms
	router.RegisterHandlerFunc(http.MethodPost, "/forms", s.handleFormPOST)
	router.RegisterHandlerFunc(http.MethodGet, "/forms", s.handleFormsGET)
	router.RegisterHandlerFunc(http.MethodGet, "/forms/:id", s.handleFormGET)
	router.RegisterHandlerFunc(http.MethodDelete, "/forms/:id", s.handleFormDELETE)
	router.RegisterHandlerFunc(http.MethodPut, "/forms/:id/fields/:field", s.handleFormFieldPUT)
	router.RegisterHandlerFunc(http.MethodPost, "/forms/:id/submit", s.handleFormSubmitPOST)

	// Middlewares, outermost first
	router.RegisterMiddlewares(
		s.requestIDMiddleware,
		s.panicRecoveryMiddleware,
		s.logRequestMiddleware,
		s.corsMiddleware,
		s.rateLimitMiddleware,
	)

	return router.All()
}

type Router struct {
	baseUrl     string
	middlewares alice.Chain
	router      *httprouter.Router
}

func NewRouter(baseUrl string) *Router {
	return &Router{
		baseUrl:     baseUrl,
		middlewares: alice.New(),
		router:      httprouter.New(),
	}
}

func (r *Router) RegisterMiddlewares(middlewares ...alice.Constructor) {
	r.middlewares = r.middlewares.Append(middlewares...)
}

func (r *Router) RegisterHandlerFunc(method, path string, handler http.HandlerFunc) {
	r.router.HandlerFunc(method, r.baseUrl+path, handler)
}

func (r *Router) All() http.Handler {
	return r.middlewares.Then(r.router)
}
