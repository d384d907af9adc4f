package routes

import (
	"net/http"

	"dlh/dlh/config"
	"dlh/dlh/controllers"
	"dlh/dlh/middlewares"
	"dlh/dlh/utils/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func ImageRoutes(ctrl *controllers.ImageController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	// generation waits on the gateway, so it only gets the client's own deadline
	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.ImageRequest
		if err := decode(r, &req); err != nil {
			return nil, 0, err
		}
		img, err := ctrl.Generate(r.Context(), currentUser(r), req.Prompt)
		if err != nil {
			return nil, 0, err
		}
		return img, http.StatusCreated, nil
	}))

	r.Group(func(crud chi.Router) {
		crud.Use(middleware.Timeout(crudTimeout))

		crud.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			imgs, err := ctrl.List(r.Context(), currentUser(r))
			if err != nil {
				return nil, 0, err
			}
			return imgs, http.StatusOK, nil
		}))

		crud.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			if err := ctrl.Delete(r.Context(), currentUser(r), id); err != nil {
				return nil, 0, err
			}
			return nil, http.StatusNoContent, nil
		}))
	})
	return r
}
