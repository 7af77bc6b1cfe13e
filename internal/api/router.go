package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vladimiradmaev/health-tracker/internal/metrics"
)

// NewRouter registers every route. Fixed /api/health-logs paths come before
// the {id} routes.
func NewRouter(h *Handler, m *metrics.Metrics, corsOrigins []string) *mux.Router {
	router := mux.NewRouter()
	router.Use(CORS(corsOrigins))
	router.Use(RequestLogger)
	router.Use(Metrics(m))

	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	logs := api.PathPrefix("/health-logs").Subrouter()
	logs.HandleFunc("", h.ListLogs).Methods(http.MethodGet)
	logs.HandleFunc("", h.CreateLog).Methods(http.MethodPost)
	logs.HandleFunc("/stats/monthly", h.MonthlyStats).Methods(http.MethodGet)
	logs.HandleFunc("/warnings/monthly", h.MonthlyWarnings).Methods(http.MethodGet)
	logs.HandleFunc("/export", h.ExportLogs).Methods(http.MethodGet)
	logs.HandleFunc("/{id}", h.GetLog).Methods(http.MethodGet)
	logs.HandleFunc("/{id}", h.UpdateLog).Methods(http.MethodPut)
	logs.HandleFunc("/{id}", h.DeleteLog).Methods(http.MethodDelete)

	api.HandleFunc("/mifit/sleep", h.SleepSessions).Methods(http.MethodGet)

	// Preflight requests carry no route method; CORS middleware answers them.
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return router
}
