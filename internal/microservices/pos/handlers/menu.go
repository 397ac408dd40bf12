package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
	log     *logger.Logger
}

func NewMenuHandler(s service.MenuServiceInterface, lg *logger.Logger) *MenuHandler {
	return &MenuHandler{service: s, log: lg}
}

func (mh *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := mh.service.List(r.Context(), q.Get("category"), pagination.FromQuery(q))
	if err != nil {
		writeError(w, mh.log, "menu_list_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (mh *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := mh.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, mh.log, "menu_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (mh *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMenuItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	item, err := mh.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, mh.log, "menu_create_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}
