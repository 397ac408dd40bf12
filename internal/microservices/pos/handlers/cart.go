package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/service"
)

type CartHandler struct {
	carts  service.CartServiceInterface
	orders service.OrderServiceInterface
	log    *logger.Logger
}

func NewCartHandler(carts service.CartServiceInterface, orders service.OrderServiceInterface, lg *logger.Logger) *CartHandler {
	return &CartHandler{carts: carts, orders: orders, log: lg}
}

func (ch *CartHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := ch.carts.CreateSession()
	ch.log.Debug("session_opened", map[string]any{"session": id})
	httpx.WriteJSON(w, http.StatusCreated, dto.SessionResponse{SessionID: id})
}

func (ch *CartHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if !ch.carts.CloseSession(mux.Vars(r)["session"]) {
		httpx.WriteProblem(w, http.StatusNotFound, "not_found", "cart session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ch *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := ch.carts.View(mux.Vars(r)["session"], promoParam(r))
	if err != nil {
		writeError(w, ch.log, "cart_view_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (ch *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	view, err := ch.carts.AddItem(r.Context(), mux.Vars(r)["session"], req, promoParam(r))
	if err != nil {
		writeError(w, ch.log, "cart_add_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (ch *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	if req.Quantity == nil {
		httpx.WriteProblem(w, http.StatusBadRequest, "validation_error", "quantity is required")
		return
	}
	vars := mux.Vars(r)
	view, err := ch.carts.UpdateQuantity(vars["session"], vars["item"], *req.Quantity, promoParam(r))
	if err != nil {
		writeError(w, ch.log, "cart_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (ch *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := ch.carts.RemoveItem(vars["session"], vars["item"], promoParam(r))
	if err != nil {
		writeError(w, ch.log, "cart_remove_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (ch *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := ch.carts.Clear(mux.Vars(r)["session"], promoParam(r))
	if err != nil {
		writeError(w, ch.log, "cart_clear_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (ch *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	resp, err := ch.orders.Checkout(r.Context(), mux.Vars(r)["session"], req)
	if err != nil {
		writeError(w, ch.log, "checkout_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}
