package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/service"
)

type OrderHandler struct {
	tracking service.TrackingServiceInterface
	receipts service.ReceiptServiceInterface
	log      *logger.Logger
}

func NewOrderHandler(tracking service.TrackingServiceInterface, receipts service.ReceiptServiceInterface, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{tracking: tracking, receipts: receipts, log: lg}
}

func (oh *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := oh.tracking.List(r.Context(), q.Get("status"), pagination.FromQuery(q))
	if err != nil {
		writeError(w, oh.log, "orders_list_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (oh *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := oh.tracking.Get(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeError(w, oh.log, "order_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (oh *OrderHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	tl, err := oh.tracking.Timeline(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeError(w, oh.log, "order_timeline_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tl)
}

func (oh *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	resp, err := oh.tracking.UpdateStatus(r.Context(), mux.Vars(r)["number"], req)
	if err != nil {
		writeError(w, oh.log, "order_status_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (oh *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	pdf, err := oh.receipts.Receipt(r.Context(), number)
	if err != nil {
		writeError(w, oh.log, "receipt_failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+number+".pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
