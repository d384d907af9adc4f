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

func AdminRoutes(admin *controllers.AdminController, courses *controllers.CourseController, roles middlewares.AdminChecker, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))
	r.Use(middlewares.RequireAdmin(roles))
	r.Use(middleware.Timeout(crudTimeout))

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			users, err := admin.SearchUsers(r.Context(), r.URL.Query().Get("q"))
			if err != nil {
				return nil, 0, err
			}
			return users, http.StatusOK, nil
		}))

		ur.Put("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			var req types.AdminUpdateUserRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			p, err := admin.UpdateUser(r.Context(), id, req)
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		ur.Post("/{id}/suspend", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			p, err := admin.ToggleSuspended(r.Context(), currentUser(r), id)
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		ur.Post("/{id}/verify", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			p, err := admin.ToggleVerified(r.Context(), id)
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		ur.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			if err := admin.DeleteUser(r.Context(), currentUser(r), id); err != nil {
				return nil, 0, err
			}
			return nil, http.StatusNoContent, nil
		}))

		ur.Put("/{id}/role", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			var req types.SetRoleRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			roles, err := admin.SetRole(r.Context(), id, req.Role)
			if err != nil {
				return nil, 0, err
			}
			return map[string][]string{"roles": roles}, http.StatusOK, nil
		}))
	})

	r.Route("/courses", func(cr chi.Router) {
		cr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			list, err := courses.ListAll(r.Context())
			if err != nil {
				return nil, 0, err
			}
			return list, http.StatusOK, nil
		}))

		cr.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.CourseRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			c, err := courses.Create(r.Context(), currentUser(r), req)
			if err != nil {
				return nil, 0, err
			}
			return c, http.StatusCreated, nil
		}))

		cr.Post("/seed", handleJSON(func(r *http.Request) (any, int, error) {
			resp, err := courses.Seed(r.Context(), currentUser(r))
			if err != nil {
				return nil, 0, err
			}
			return resp, http.StatusOK, nil
		}))

		cr.Put("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			var req types.CourseRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			c, err := courses.Update(r.Context(), id, req)
			if err != nil {
				return nil, 0, err
			}
			return c, http.StatusOK, nil
		}))

		cr.Delete("/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			id, err := idParam(r, "id")
			if err != nil {
				return nil, 0, err
			}
			if err := courses.Delete(r.Context(), id); err != nil {
				return nil, 0, err
			}
			return nil, http.StatusNoContent, nil
		}))
	})

	r.Route("/knowledge", func(kr chi.Router) {
		kr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			k, err := admin.Knowledge(r.Context())
			if err != nil {
				return nil, 0, err
			}
			return k, http.StatusOK, nil
		}))

		kr.Put("/", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.KnowledgeRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			k, err := admin.SetKnowledge(r.Context(), req.Value)
			if err != nil {
				return nil, 0, err
			}
			return k, http.StatusOK, nil
		}))

		kr.Post("/import", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.KnowledgeImportRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			k, err := admin.ImportKnowledge(r.Context(), req.URL)
			if err != nil {
				return nil, 0, err
			}
			return k, http.StatusOK, nil
		}))
	})
	return r
}
