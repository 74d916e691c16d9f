// Package router sets up all HTTP routes and middleware chains of the menu
// service. Catalog reads are public; every mutation sits behind the
// session gate and CSRF check.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrmenu/internal/handlers"
	"qrmenu/internal/middleware"
	"qrmenu/internal/models"
)

// Deps holds everything the routes dispatch to.
type Deps struct {
	Sessions   middleware.SessionGetter
	Categories *handlers.Categories
	Products   *handlers.Products
	Upload     *handlers.Upload
	QRCodes    *handlers.QRCodes
	Auth       *handlers.Auth

	// Uploads serves GET /uploads/*.
	Uploads http.Handler

	// LoginLimiter throttles POST /api/login per client IP. Optional.
	LoginLimiter *middleware.RateLimiter

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))
	r.Use(middleware.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", healthHandler)
	r.Get(models.PlaceholderImage, placeholderHandler)
	if d.Uploads != nil {
		r.Handle("/uploads/*", d.Uploads)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF(d.SecureCookies))

		// Public reads used by the menu site.
		r.Get("/categories", d.Categories.List)
		r.Get("/categories/{id}", d.Categories.Get)
		r.Get("/categories/slug/{slug}", d.Categories.GetBySlug)
		r.Get("/products", d.Products.List)
		r.Get("/products/{id}", d.Products.Get)
		r.Get("/qr-codes", d.QRCodes.Latest)
		r.Get("/qr-codes/image.png", d.QRCodes.Image)

		// Session endpoints.
		login := http.Handler(http.HandlerFunc(d.Auth.Login))
		if d.LoginLimiter != nil {
			login = d.LoginLimiter.Middleware(login)
		}
		r.Method(http.MethodPost, "/login", login)
		r.Post("/logout", d.Auth.Logout)
		r.Get("/check-session", d.Auth.CheckSession)

		// Admin mutations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/categories", d.Categories.Create)
			r.Put("/categories/{id}", d.Categories.Update)
			r.Delete("/categories/{id}", d.Categories.Delete)

			r.Post("/products", d.Products.Create)
			r.Delete("/products", d.Products.Delete)
			r.Put("/products/{id}", d.Products.Update)
			r.Delete("/products/{id}", d.Products.RemoveImage)

			r.Post("/upload", d.Upload.Handle)
			r.Post("/qr-codes", d.QRCodes.Save)

			r.Post("/newpassword", d.Auth.NewPassword)
			r.Post("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/enable", d.Auth.TwoFAEnable)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// placeholderSVG is shown for products without images.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300" viewBox="0 0 400 300">` +
	`<rect width="400" height="300" fill="#E5E7EB"/>` +
	`<path d="M150 200l40-50 30 35 20-25 40 40z" fill="#9CA3AF"/>` +
	`<circle cx="170" cy="120" r="15" fill="#9CA3AF"/></svg>`

func placeholderHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write([]byte(placeholderSVG))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
