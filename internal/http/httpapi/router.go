package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quotestudio/internal/http/handlers"
	"quotestudio/internal/middleware"
)

// Options carries the middleware settings of the router.
type Options struct {
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	// StaticDir, when set, serves filesystem uploads under /static.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", handlers.Metrics())
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/v1/templates", app.Templates)
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	limit := opts.RateLimitPerMin
	if limit <= 0 {
		limit = 30
	}

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(limit, time.Minute))
		r.Post("/signup", app.SignUp)
		r.Post("/signin", app.SignIn)
		r.With(middleware.Auth(app.Identity)).Post("/signout", app.SignOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(app.Identity))

		r.Route("/v1/me", func(r chi.Router) {
			r.Get("/", app.Me)
			r.Patch("/", app.UpdateMe)
			r.Post("/avatar", app.UploadAvatar)
			r.Get("/credits", app.Credits)
			r.Get("/designs", app.Designs)
		})

		r.Route("/v1/quotes", func(r chi.Router) {
			r.With(middleware.RateLimit(limit, time.Minute)).Post("/generate", app.GenerateQuotes)
			r.Post("/export", app.ExportQuotes)
		})

		r.Route("/v1/designs", func(r chi.Router) {
			r.Post("/layout", app.LayoutDesign)
			r.Post("/render", app.RenderDesign)
			r.Post("/bundle", app.BundleDesign)
			r.Post("/save", app.SaveDesign)
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(app.Profiles))
			r.Get("/users", app.AdminListUsers)
			r.Put("/users/{id}/credits", app.AdminSetCredits)
			r.Put("/users/{id}/admin", app.AdminSetRole)
			r.Post("/credits/reset", app.AdminResetAll)
			r.Get("/stats", app.AdminStats)
		})
	})

	return r
}
