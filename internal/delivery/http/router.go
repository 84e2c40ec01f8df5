package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth        *controllers.AuthController
	Event       *controllers.EventController
	AdminEvent  *controllers.AdminEventController
	Request     *controllers.RequestController
	Category    *controllers.CategoryController
	User        *controllers.UserController
	Compilation *controllers.CompilationController
	Comment     *controllers.CommentController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	admin := middleware.RequireAdmin(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Public
	mux.HandleFunc("GET /events", c.Event.GetEventsPublic)
	mux.HandleFunc("GET /events/{id}", c.Event.GetEventPublic)
	mux.HandleFunc("GET /events/{id}/comments", c.Comment.GetEventComments)
	mux.HandleFunc("GET /categories", c.Category.GetCategories)
	mux.HandleFunc("GET /categories/{catId}", c.Category.GetCategory)
	mux.HandleFunc("GET /compilations", c.Compilation.GetCompilations)
	mux.HandleFunc("GET /compilations/{compId}", c.Compilation.GetCompilation)

	// Private (owner scope)
	mux.HandleFunc("GET /users/{userId}/events", auth(c.Event.GetUserEvents))
	mux.HandleFunc("POST /users/{userId}/events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", auth(c.Event.GetUserEvent))
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", auth(c.Event.UpdateUserEvent))
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", auth(c.Request.GetEventRequests))
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", auth(c.Request.DecideRequests))
	mux.HandleFunc("GET /users/{userId}/requests", auth(c.Request.GetUserRequests))
	mux.HandleFunc("POST /users/{userId}/requests", auth(c.Request.CreateRequest))
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", auth(c.Request.CancelRequest))
	mux.HandleFunc("POST /users/{userId}/events/{eventId}/comments", auth(c.Comment.CreateComment))
	mux.HandleFunc("PATCH /users/{userId}/comments/{commentId}", auth(c.Comment.UpdateComment))
	mux.HandleFunc("DELETE /users/{userId}/comments/{commentId}", auth(c.Comment.DeleteComment))

	// Admin
	mux.HandleFunc("GET /admin/events", admin(c.AdminEvent.GetEvents))
	mux.HandleFunc("PATCH /admin/events/{eventId}", admin(c.AdminEvent.UpdateEvent))
	mux.HandleFunc("POST /admin/categories", admin(c.Category.CreateCategory))
	mux.HandleFunc("PATCH /admin/categories/{catId}", admin(c.Category.UpdateCategory))
	mux.HandleFunc("DELETE /admin/categories/{catId}", admin(c.Category.DeleteCategory))
	mux.HandleFunc("GET /admin/users", admin(c.User.GetUsers))
	mux.HandleFunc("POST /admin/users", admin(c.User.CreateUser))
	mux.HandleFunc("DELETE /admin/users/{userId}", admin(c.User.DeleteUser))
	mux.HandleFunc("POST /admin/compilations", admin(c.Compilation.CreateCompilation))
	mux.HandleFunc("PATCH /admin/compilations/{compId}", admin(c.Compilation.UpdateCompilation))
	mux.HandleFunc("DELETE /admin/compilations/{compId}", admin(c.Compilation.DeleteCompilation))
	mux.HandleFunc("DELETE /admin/comments/{commentId}", admin(c.Comment.DeleteCommentByAdmin))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
