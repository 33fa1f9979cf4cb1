// Package api exposes the answer pipeline and run history over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/answer-cli/internal/monitoring"
	"github.com/sells-group/answer-cli/internal/pipeline"
	"github.com/sells-group/answer-cli/internal/store"
)

// requestTimeout bounds a whole three-call pipeline run.
const requestTimeout = 5 * time.Minute

// maxBodyBytes caps POST /v1/answer payloads.
const maxBodyBytes = 10 << 20

// defaultLookbackHours is the /v1/stats window when none is given.
const defaultLookbackHours = 24

type handler struct {
	svc     *pipeline.Service
	store   store.Store
	metrics *monitoring.Collector
}

// NewRouter builds the HTTP handler. A nil store disables the run history
// and stats routes, which then answer 404.
func NewRouter(svc *pipeline.Service, st store.Store, allowedOrigins []string) http.Handler {
	h := &handler{svc: svc, store: st}
	if st != nil {
		h.metrics = monitoring.NewCollector(st)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/answer", h.answer)
		r.Get("/runs", h.listRuns)
		r.Get("/runs/{id}", h.getRun)
		r.Get("/stats", h.stats)
	})

	return r
}
