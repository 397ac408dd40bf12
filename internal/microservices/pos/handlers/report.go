package handlers

import (
	"net/http"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/service"
)

type ReportHandler struct {
	service service.ReportServiceInterface
	log     *logger.Logger
}

func NewReportHandler(s service.ReportServiceInterface, lg *logger.Logger) *ReportHandler {
	return &ReportHandler{service: s, log: lg}
}

func (rh *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := rh.service.Sales(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, rh.log, "sales_report_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func (rh *ReportHandler) Workers(w http.ResponseWriter, r *http.Request) {
	workers, err := rh.service.Workers(r.Context())
	if err != nil {
		writeError(w, rh.log, "workers_status_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, workers)
}
