package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/domain"
	"curryhouse/internal/orders/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) TableBill(w http.ResponseWriter, r *http.Request) {
	tableNo := mux.Vars(r)["tableNo"]
	bill, err := h.service.TableBill(r.Context(), tableNo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req domain.AcceptOrderRequest
	if err := httpx.Decode(r, &req); err != nil || req.OrderNumber == "" {
		httpx.Error(w, http.StatusBadRequest, "orderNumber is required")
		return
	}
	order, err := h.service.Accept(r.Context(), req.OrderNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelOrderRequest
	if err := httpx.Decode(r, &req); err != nil || req.OrderNumber == "" {
		httpx.Error(w, http.StatusBadRequest, "orderNumber is required")
		return
	}
	order, err := h.service.Cancel(r.Context(), req.OrderNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req domain.SettleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	settled, err := h.service.Settle(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settled": settled})
}

func (h *OrderHandler) KitchenQueue(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.KitchenQueue(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) DispatchTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.service.DispatchTicket(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalid):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		httpx.Error(w, http.StatusInternalServerError, "server error")
	}
}
