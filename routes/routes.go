package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-vote/app"
	"github.com/mbolis/quick-vote/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.Config)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// member ballot
	api.Route("/polls", func(r chi.Router) {
		r.Use(middlewares.Member(app.Config))

		r.Get("/", ListActivePolls(app))
		r.Get(`/{id:^\d+$}`, GetBallot(app))
		r.Post(`/{id:^\d+$}/votes`, CastVote(app))
		r.Get(`/{id:^\d+$}/votes/mine`, GetOwnVote(app))
	})

	// admin poll console
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.Config))

		r.Post("/polls", CreatePoll(app))
		r.Get("/polls", ListPolls(app))
		r.Get(`/polls/{id:^\d+$}`, GetPollById(app))
		r.Post(`/polls/{id:^\d+$}/close`, ClosePoll(app))
		r.Delete(`/polls/{id:^\d+$}`, DeletePoll(app))

		r.Get(`/polls/{id:^\d+$}/results`, GetPollResults(app))
		r.Get(`/polls/{id:^\d+$}/results/live`, StreamPollResults(app))
		r.Get(`/polls/{id:^\d+$}/export`, ExportPollResults(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
