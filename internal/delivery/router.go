package delivery

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	progressDelivery "edu_progress/internal/delivery/progress"
	sessionDelivery "edu_progress/internal/delivery/session"
	ownMiddleware "edu_progress/internal/middleware"
)

type Handlers struct {
	Session  *sessionDelivery.SessionHandler
	Progress *progressDelivery.ProgressHandler
}

func NewRouter(h Handlers, isLocalCors bool) *chi.Mux {
	r := chi.NewRouter()
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(ownMiddleware.ClientID)

	r.Route("/session", func(r chi.Router) {
		r.Post("/", h.Session.Login)
		r.Get("/", h.Session.Status)
		r.Delete("/", h.Session.Logout)
		r.Post("/extend", h.Session.Extend)
		r.Get("/events", h.Session.Events)
	})

	r.Post("/profiles", h.Progress.CreateProfile)
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.Progress.GetProfile)
		r.Post("/xp", h.Progress.AddXP)
		r.Post("/achievements", h.Progress.UnlockAchievement)
		r.Post("/glass/empty", h.Progress.EmptyGlass)
		r.Post("/glass/fill", h.Progress.FillGlass)
		r.Post("/activity", h.Progress.RecordActivity)
		r.Post("/preferences", h.Progress.SetPreferences)
	})

	r.Route("/progress/{key}", func(r chi.Router) {
		r.Post("/init", h.Progress.InitLanguage)
		r.Post("/tutorial", h.Progress.UpdateTutorial)
		r.Post("/game", h.Progress.UpdateGame)
		r.Post("/sandbox", h.Progress.UpdateSandbox)
		r.Post("/difficulty", h.Progress.MarkDifficulty)
		r.Get("/summary", h.Progress.Summary)
	})

	return r
}
