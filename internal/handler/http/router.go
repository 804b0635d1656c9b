package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adboard/adboard/internal/service"
	"github.com/adboard/adboard/pkg/health"
	"github.com/adboard/adboard/pkg/middleware"
)

// Services bundles the service layer for route registration.
type Services struct {
	Users      *service.UserService
	Categories *service.CategoryService
	Listings   *service.ListingService
	Favourites *service.FavouriteService
	Messages   *service.MessageService
	Reports    *service.ReportService
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("adboard"))
	r.Use(middleware.Tracing("adboard"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	userHandler := NewUserHandler(svcs.Users, logger)
	categoryHandler := NewCategoryHandler(svcs.Categories, logger)
	listingHandler := NewListingHandler(svcs.Listings, logger)
	favouriteHandler := NewFavouriteHandler(svcs.Favourites, logger)
	messageHandler := NewMessageHandler(svcs.Messages, logger)
	reportHandler := NewReportHandler(svcs.Reports, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Get("/", userHandler.Search)
			r.Get("/{userId}", userHandler.Get)
			r.Patch("/{userId}", userHandler.Update)
			r.Delete("/{userId}", userHandler.Delete)

			r.Route("/{userId}/favourites", func(r chi.Router) {
				r.Get("/", favouriteHandler.Get)
				r.Post("/{listingId}", favouriteHandler.Add)
				r.Delete("/{listingId}", favouriteHandler.Remove)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.Create)
			r.Get("/", categoryHandler.List)
			r.Get("/{id}", categoryHandler.Get)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", listingHandler.Create)
			r.Get("/", listingHandler.Search)
			r.Get("/{id}", listingHandler.Get)
			r.Patch("/{id}", listingHandler.Update)
			r.Delete("/{id}", listingHandler.Delete)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", messageHandler.Send)
			r.Get("/conversations/{userA}/{userB}", messageHandler.Conversation)
			r.Get("/correspondents/{userId}", messageHandler.Correspondents)
			r.Post("/{id}/read", messageHandler.MarkRead)
		})

		r.Get("/reports/monthly", reportHandler.Monthly)
	})

	return r
}
