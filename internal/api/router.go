package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/promptia/internal/api/handlers"
	"github.com/nikhilbhutani/promptia/internal/api/middleware"
	"github.com/nikhilbhutani/promptia/internal/auth"
	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/config"
	"github.com/nikhilbhutani/promptia/internal/generator"
	"github.com/nikhilbhutani/promptia/internal/library"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Config    config.ServerConfig
	Tokens    *auth.Tokens
	Catalog   *catalog.Catalog
	Library   *library.Service
	Generator *generator.Service
	Checks    map[string]handlers.Pinger
}

type Router struct {
	mux      *chi.Mux
	deps     Deps
	jwt      *auth.Middleware
	limiters []*middleware.RateLimiter
}

func NewRouter(deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		deps: deps,
		jwt:  auth.NewMiddleware(deps.Tokens),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.deps.Config.CORSOrigins))

	rl := rt.newLimiter(rt.deps.Config.RateLimit, rt.deps.Config.RateBurst)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	deviceH := handlers.NewDeviceHandler(rt.deps.Tokens)
	promptH := handlers.NewPromptHandler()
	catalogH := handlers.NewCatalogHandler(rt.deps.Catalog)
	wizardH := handlers.NewWizardHandler(rt.deps.Catalog)
	generateH := handlers.NewGenerateHandler(rt.deps.Generator, rt.deps.Library)
	libraryH := handlers.NewLibraryHandler(rt.deps.Library)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/devices", deviceH.Register)

		r.Get("/models", promptH.Models)
		r.Post("/prompts/build", promptH.Build)
		r.Post("/prompts/render", promptH.Render)

		r.Get("/catalog", catalogH.Catalog)
		r.Get("/gallery", catalogH.Gallery)
		r.Get("/gallery/{id}", catalogH.GalleryItem)
		r.Get("/i18n/{lang}", catalogH.Strings)

		r.Post("/wizard", wizardH.New)
		r.Post("/wizard/transition", wizardH.Transition)

		// Device routes
		r.Group(func(r chi.Router) {
			r.Use(rt.jwt.Authenticate)

			r.Route("/generate", func(r chi.Router) {
				// LLM calls cost money; hold each device to a tighter budget.
				genRL := rt.newLimiter(rt.deps.Config.RateLimit/10, max(rt.deps.Config.RateBurst/10, 1))
				r.Use(genRL.Limit)
				r.Post("/smart", generateH.Smart)
				r.Post("/reverse", generateH.Reverse)
			})

			r.Route("/library", func(r chi.Router) {
				r.Delete("/", libraryH.ClearAll)

				r.Route("/prompts", func(r chi.Router) {
					r.Get("/", libraryH.ListPrompts)
					r.Post("/", libraryH.SavePrompt)
					r.Get("/{id}", libraryH.GetPrompt)
					r.Patch("/{id}", libraryH.UpdatePrompt)
					r.Delete("/{id}", libraryH.DeletePrompt)
					r.Post("/{id}/favorite", libraryH.ToggleFavorite)
					r.Put("/{id}/folder", libraryH.MovePrompt)
				})

				r.Route("/folders", func(r chi.Router) {
					r.Get("/", libraryH.ListFolders)
					r.Post("/", libraryH.CreateFolder)
					r.Patch("/{id}", libraryH.UpdateFolder)
					r.Delete("/{id}", libraryH.DeleteFolder)
				})

				r.Route("/history", func(r chi.Router) {
					r.Get("/", libraryH.ListHistory)
					r.Post("/", libraryH.AddHistory)
					r.Delete("/", libraryH.ClearHistory)
				})

				r.Get("/settings", libraryH.Settings)
				r.Patch("/settings", libraryH.UpdateSettings)
				r.Post("/settings/onboarding", libraryH.CompleteOnboarding)

				r.Get("/resolve/{id}", libraryH.Resolve)
				r.Get("/remix/{id}", libraryH.Remix)
			})
		})
	})

	return r
}

func (rt *Router) newLimiter(rps float64, burst int) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(rps, burst)
	rt.limiters = append(rt.limiters, rl)
	return rl
}

// Close stops background work started by Setup.
func (rt *Router) Close() {
	for _, rl := range rt.limiters {
		rl.Stop()
	}
}
