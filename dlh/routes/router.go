package routes

import (
	"net/http"

	"dlh/dlh/config"
	"dlh/dlh/controllers"
	"dlh/dlh/middlewares"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Controllers struct {
	Health *controllers.HealthController
	Auth   *controllers.AuthController
	User   *controllers.UserController
	Course *controllers.CourseController
	Chat   *controllers.ChatController
	Image  *controllers.ImageController
	Admin  *controllers.AdminController
	Roles  middlewares.AdminChecker
}

func NewRouter(ctrls Controllers, cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CORS(cfg.AllowedOrigins))

	r.Mount("/health", HealthRoutes(ctrls.Health))
	r.Mount("/auth", AuthRoutes(ctrls.Auth))
	r.Mount("/users", UserRoutes(ctrls.User, cfg))
	r.Mount("/courses", CourseRoutes(ctrls.Course))
	r.Mount("/chat", ChatRoutes(ctrls.Chat, cfg))
	r.Mount("/images", ImageRoutes(ctrls.Image, cfg))
	r.Mount("/admin", AdminRoutes(ctrls.Admin, ctrls.Course, ctrls.Roles, cfg))
	return r
}
