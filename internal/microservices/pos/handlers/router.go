package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
)

func Router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests(h.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/menu", h.MenuHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/menu", h.MenuHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/menu/{id}", h.MenuHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/sessions", h.CartHandler.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{session}", h.CartHandler.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{session}/cart", h.CartHandler.View).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{session}/cart", h.CartHandler.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{session}/cart/items", h.CartHandler.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{session}/cart/items/{item}", h.CartHandler.UpdateQuantity).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{session}/cart/items/{item}", h.CartHandler.RemoveItem).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{session}/checkout", h.CartHandler.Checkout).Methods(http.MethodPost)

	api.HandleFunc("/orders", h.OrderHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/orders/{number}", h.OrderHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/orders/{number}/timeline", h.OrderHandler.Timeline).Methods(http.MethodGet)
	api.HandleFunc("/orders/{number}/status", h.OrderHandler.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{number}/receipt", h.OrderHandler.Receipt).Methods(http.MethodGet)

	api.HandleFunc("/reports/sales", h.ReportHandler.Sales).Methods(http.MethodGet)
	api.HandleFunc("/workers", h.ReportHandler.Workers).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteProblem(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(lg *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			lg.Debug("http_request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
