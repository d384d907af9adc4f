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

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		// POST /chat/ : streaming relay, no timeout
		gr.Post("/", ctrl.Relay)

		gr.Group(func(crud chi.Router) {
			crud.Use(middleware.Timeout(crudTimeout))

			crud.Get("/sessions", handleJSON(func(r *http.Request) (any, int, error) {
				sessions, err := ctrl.ListSessions(r.Context(), currentUser(r))
				if err != nil {
					return nil, 0, err
				}
				return sessions, http.StatusOK, nil
			}))

			crud.Post("/sessions", handleJSON(func(r *http.Request) (any, int, error) {
				var req types.CreateSessionRequest
				if r.ContentLength != 0 {
					if err := decode(r, &req); err != nil {
						return nil, 0, err
					}
				}
				s, err := ctrl.CreateSession(r.Context(), currentUser(r), req)
				if err != nil {
					return nil, 0, err
				}
				return s, http.StatusCreated, nil
			}))

			crud.Delete("/sessions/{id}", handleJSON(func(r *http.Request) (any, int, error) {
				id, err := idParam(r, "id")
				if err != nil {
					return nil, 0, err
				}
				if err := ctrl.DeleteSession(r.Context(), currentUser(r), id); err != nil {
					return nil, 0, err
				}
				return nil, http.StatusNoContent, nil
			}))

			crud.Get("/sessions/{id}/messages", handleJSON(func(r *http.Request) (any, int, error) {
				id, err := idParam(r, "id")
				if err != nil {
					return nil, 0, err
				}
				msgs, err := ctrl.ListMessages(r.Context(), currentUser(r), id)
				if err != nil {
					return nil, 0, err
				}
				return msgs, http.StatusOK, nil
			}))

			crud.Post("/sessions/{id}/messages", handleJSON(func(r *http.Request) (any, int, error) {
				id, err := idParam(r, "id")
				if err != nil {
					return nil, 0, err
				}
				var req types.SaveMessageRequest
				if err := decode(r, &req); err != nil {
					return nil, 0, err
				}
				msg, err := ctrl.SaveMessage(r.Context(), currentUser(r), id, req)
				if err != nil {
					return nil, 0, err
				}
				return msg, http.StatusCreated, nil
			}))
		})
	})

	// the token travels in the first websocket frame
	r.HandleFunc("/ws", ctrl.ServeWS)
	return r
}
