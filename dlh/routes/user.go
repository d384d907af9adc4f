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

func UserRoutes(ctrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		gr.Use(middleware.Timeout(crudTimeout))

		gr.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
			p, err := ctrl.GetProfile(r.Context(), currentUser(r))
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		gr.Put("/me", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.UpdateProfileRequest
			if err := decode(r, &req); err != nil {
				return nil, 0, err
			}
			p, err := ctrl.UpdateProfile(r.Context(), currentUser(r), req)
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		gr.Post("/me/avatar", handleJSON(func(r *http.Request) (any, int, error) {
			// small slack for the multipart envelope
			r.Body = http.MaxBytesReader(nil, r.Body, controllers.MaxAvatarBytes+1<<20)
			if err := r.ParseMultipartForm(controllers.MaxAvatarBytes); err != nil {
				return nil, 0, &controllers.ValidationError{Msg: "avatar must be an image smaller than 5 MB"}
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				return nil, 0, &controllers.ValidationError{Msg: "file is required"}
			}
			defer file.Close()

			p, err := ctrl.UploadAvatar(r.Context(), currentUser(r), controllers.Avatar{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			})
			if err != nil {
				return nil, 0, err
			}
			return p, http.StatusOK, nil
		}))

		gr.Get("/me/role", handleJSON(func(r *http.Request) (any, int, error) {
			role, err := ctrl.Role(r.Context(), currentUser(r))
			if err != nil {
				return nil, 0, err
			}
			return role, http.StatusOK, nil
		}))

		gr.Get("/me/dashboard", handleJSON(func(r *http.Request) (any, int, error) {
			d, err := ctrl.Dashboard(r.Context(), currentUser(r))
			if err != nil {
				return nil, 0, err
			}
			return d, http.StatusOK, nil
		}))
	})

	return r
}
