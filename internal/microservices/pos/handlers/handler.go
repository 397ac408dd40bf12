package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/service"
)

type Handler struct {
	MenuHandler   *MenuHandler
	CartHandler   *CartHandler
	OrderHandler  *OrderHandler
	ReportHandler *ReportHandler
	log           *logger.Logger
}

func New(s *service.Service, lg *logger.Logger) *Handler {
	return &Handler{
		MenuHandler:   NewMenuHandler(s.MenuService, lg),
		CartHandler:   NewCartHandler(s.CartService, s.OrderService, lg),
		OrderHandler:  NewOrderHandler(s.TrackingService, s.ReceiptService, lg),
		ReportHandler: NewReportHandler(s.ReportService, lg),
		log:           lg,
	}
}

// writeError maps service errors onto problem responses. Anything unknown is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, lg *logger.Logger, action string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrNegativeAmount),
		errors.Is(err, cart.ErrMissingID):
		httpx.WriteProblem(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrEmptyCart):
		httpx.WriteProblem(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, service.ErrMenuItemUnavailable):
		httpx.WriteProblem(w, http.StatusConflict, "item_unavailable", err.Error())
	case errors.Is(err, cart.ErrCheckoutInProgress):
		httpx.WriteProblem(w, http.StatusConflict, "checkout_in_progress", err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		httpx.WriteProblem(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, cart.ErrSessionNotFound),
		errors.Is(err, service.ErrItemNotInCart),
		errors.Is(err, service.ErrNotFound):
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrPublishFailed):
		lg.Error(action, err, nil)
		httpx.WriteProblem(w, http.StatusServiceUnavailable, "kitchen_unavailable", "order could not be sent to the kitchen, try again")
	default:
		lg.Error(action, err, nil)
		httpx.WriteProblem(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func badJSON(w http.ResponseWriter, err error) {
	httpx.WriteProblem(w, http.StatusBadRequest, "invalid_json", err.Error())
}

func promoParam(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("promo"))
	return err == nil && v
}
