package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"corpsite/internal/auth"
	"corpsite/internal/httpserver/handlers"
	"corpsite/internal/service"
)

// Options carries everything the router wires into handlers.
type Options struct {
	DB           *gorm.DB
	Logger       *zap.SugaredLogger
	Tokens       auth.Tokens
	Accounts     *service.Accounts
	Views        *service.Views
	CORSOrigins  []string
	SecureCookie bool
}

func NewRouter(o Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, chimw.Logger)
	if len(o.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   o.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/signup", handlers.Signup(o.Accounts, o.Logger))
		ar.Post("/login", handlers.Login(o.Accounts, o.Tokens, o.SecureCookie, o.Logger))
		ar.Post("/logout", handlers.Logout(o.Accounts, o.Tokens, o.SecureCookie, o.Logger))
		ar.Get("/verify", handlers.VerifyToken(o.Tokens, o.Logger))
		// No auth gate on deletion: matches the reference admin tooling.
		ar.Delete("/users/{id}", handlers.DeleteUser(o.Accounts, o.Logger))
	})

	r.Route("/api/posts", func(pr chi.Router) {
		pr.With(auth.OptionalAuth(o.Tokens)).Post("/", handlers.CreatePost(o.DB, o.Logger))
		pr.Get("/", handlers.ListPosts(o.DB, o.Logger))
		pr.With(auth.OptionalAuth(o.Tokens)).Get("/{id}", handlers.GetPost(o.DB, o.Views, o.Logger))
		pr.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAuth(o.Tokens))
			protected.Patch("/{id}", handlers.UpdatePost(o.DB, o.Logger))
			protected.Delete("/{id}", handlers.DeletePost(o.DB, o.Logger))
			protected.Get("/{id}/views", handlers.PostViewLogs(o.DB, o.Views, o.Logger))
			protected.Get("/views/{username}", handlers.UserViewLogs(o.Views, o.Logger))
		})
	})

	r.Route("/api/contact", func(cr chi.Router) {
		cr.Post("/", handlers.CreateContact(o.DB, o.Logger))
		cr.Get("/", handlers.ListContacts(o.DB, o.Logger))
		cr.Get("/{id}", handlers.GetContact(o.DB, o.Logger))
		cr.Group(func(protected chi.Router) {
			protected.Use(auth.RequireAuth(o.Tokens))
			protected.Patch("/{id}", handlers.UpdateContactStatus(o.DB, o.Logger))
			protected.Delete("/{id}", handlers.DeleteContact(o.DB, o.Logger))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
