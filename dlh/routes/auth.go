package routes

import (
	"net/http"

	"dlh/dlh/controllers"
	"dlh/dlh/utils/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func AuthRoutes(ctrl *controllers.AuthController) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(crudTimeout))

	r.Post("/signup", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.SignupRequest
		if err := decode(r, &req); err != nil {
			return nil, 0, err
		}
		resp, err := ctrl.Signup(r.Context(), req)
		if err != nil {
			return nil, 0, err
		}
		return resp, http.StatusCreated, nil
	}))

	r.Post("/login", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.LoginRequest
		if err := decode(r, &req); err != nil {
			return nil, 0, err
		}
		resp, err := ctrl.Login(r.Context(), req)
		if err != nil {
			return nil, 0, err
		}
		return resp, http.StatusOK, nil
	}))
	return r
}
