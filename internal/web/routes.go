package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendcore/internal/attendance"
	"attendcore/internal/recognizer"
	"attendcore/internal/store"
	"attendcore/internal/web/handlers"
)

func (s *Server) setupRoutes(service *recognizer.Service, recorder *attendance.Recorder, cache *store.Cache) {
	recognizeHandler := handlers.NewRecognizeHandler(service, recorder)
	enrollHandler := handlers.NewEnrollHandler(service, cache)

	// Health check and metrics (no auth, consumed by infrastructure).
	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		// Recognition burst from the live-capture client.
		r.Post("/recognize", recognizeHandler.Recognize)

		// Reference embedding enrollment from the registration flow.
		r.Post("/students/{id}/embedding", enrollHandler.Enroll)
		r.Delete("/students/{id}/embedding", enrollHandler.Delete)

		// Nearby enrolled references, for spotting duplicate enrollments.
		r.Get("/students/{id}/similar", enrollHandler.Similar)
	})
}
