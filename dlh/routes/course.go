package routes

import (
	"net/http"

	"dlh/dlh/controllers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CourseRoutes is the public catalog.
func CourseRoutes(ctrl *controllers.CourseController) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Timeout(crudTimeout))

	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		q := r.URL.Query()
		courses, err := ctrl.ListPublished(r.Context(), q.Get("category"), q.Get("q"))
		if err != nil {
			return nil, 0, err
		}
		return courses, http.StatusOK, nil
	}))

	r.Get("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
		id, err := idParam(r, "id")
		if err != nil {
			return nil, 0, err
		}
		course, err := ctrl.GetPublished(r.Context(), id)
		if err != nil {
			return nil, 0, err
		}
		return course, http.StatusOK, nil
	}))
	return r
}
