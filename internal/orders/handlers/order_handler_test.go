package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"curryhouse/internal/domain"
)

type stubOrderService struct {
	createResp domain.CreateOrderResponse
	createErr  error
	order      domain.Order
	orderErr   error
	bill       domain.TableBill
	settled    int
	settleErr  error

	gotTable  string
	gotNumber string
	gotSettle domain.SettleRequest
	gotTicket int
}

func (s *stubOrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	return s.createResp, s.createErr
}

func (s *stubOrderService) Accept(ctx context.Context, number string) (domain.Order, error) {
	s.gotNumber = number
	return s.order, s.orderErr
}

func (s *stubOrderService) Cancel(ctx context.Context, number string) (domain.Order, error) {
	s.gotNumber = number
	return s.order, s.orderErr
}

func (s *stubOrderService) TableBill(ctx context.Context, tableNo string) (domain.TableBill, error) {
	s.gotTable = tableNo
	return s.bill, s.orderErr
}

func (s *stubOrderService) Settle(ctx context.Context, req domain.SettleRequest) (int, error) {
	s.gotSettle = req
	return s.settled, s.settleErr
}

func (s *stubOrderService) KitchenQueue(ctx context.Context) ([]domain.Order, error) {
	return []domain.Order{s.order}, s.orderErr
}

func (s *stubOrderService) DispatchTicket(ctx context.Context, id int) (domain.Order, error) {
	s.gotTicket = id
	return s.order, s.orderErr
}

func (s *stubOrderService) List(ctx context.Context, status, orderType string) ([]domain.Order, error) {
	return []domain.Order{s.order}, s.orderErr
}

func newRouter(h *OrderHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/order", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/order", h.List).Methods(http.MethodGet)
	r.HandleFunc("/order/table/{tableNo}", h.TableBill).Methods(http.MethodGet)
	r.HandleFunc("/order/accept", h.Accept).Methods(http.MethodPut)
	r.HandleFunc("/order/cancel", h.Cancel).Methods(http.MethodPut)
	r.HandleFunc("/order/settle", h.Settle).Methods(http.MethodPut)
	r.HandleFunc("/order/kitchen", h.KitchenQueue).Methods(http.MethodGet)
	r.HandleFunc("/order/kitchen/{id}", h.DispatchTicket).Methods(http.MethodPut)
	return r
}

func TestCreateOrderReturns201(t *testing.T) {
	stub := &stubOrderService{createResp: domain.CreateOrderResponse{
		OrderNumber: "ORD_20260831_001", Status: domain.StatusPending, Total: 21.20,
	}}
	router := newRouter(NewOrderHandler(stub))

	body := `{"orderType":"dinein","tableNumber":"5","items":[{"name":"Chicken Korma","quantity":1,"price":20.00}]}`
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp domain.CreateOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderNumber != "ORD_20260831_001" {
		t.Fatalf("order number = %s", resp.OrderNumber)
	}
}

func TestCreateOrderMalformedBody(t *testing.T) {
	router := newRouter(NewOrderHandler(&stubOrderService{}))

	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderInvalidMapsTo400(t *testing.T) {
	stub := &stubOrderService{createErr: fmt.Errorf("%w: table number is required for dine-in", domain.ErrInvalid)}
	router := newRouter(NewOrderHandler(stub))

	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(`{"orderType":"dinein"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(errResp.Message, "table number") {
		t.Fatalf("message = %q", errResp.Message)
	}
}

func TestAcceptUnknownOrderMapsTo404(t *testing.T) {
	stub := &stubOrderService{orderErr: domain.ErrNotFound}
	router := newRouter(NewOrderHandler(stub))

	req := httptest.NewRequest(http.MethodPut, "/order/accept", strings.NewReader(`{"orderNumber":"ORD_20260831_042"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if stub.gotNumber != "ORD_20260831_042" {
		t.Fatalf("service got number %q", stub.gotNumber)
	}
}

func TestAcceptRequiresOrderNumber(t *testing.T) {
	router := newRouter(NewOrderHandler(&stubOrderService{}))

	req := httptest.NewRequest(http.MethodPut, "/order/accept", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTableBillPassesTableNumber(t *testing.T) {
	stub := &stubOrderService{bill: domain.TableBill{TableNumber: "7", Subtotal: 30.00, Tax: 1.80, Total: 31.80}}
	router := newRouter(NewOrderHandler(stub))

	req := httptest.NewRequest(http.MethodGet, "/order/table/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.gotTable != "7" {
		t.Fatalf("service got table %q", stub.gotTable)
	}
	var bill domain.TableBill
	if err := json.Unmarshal(rec.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bill.Total != 31.80 {
		t.Fatalf("total = %.2f", bill.Total)
	}
}

func TestSettleReturnsCount(t *testing.T) {
	stub := &stubOrderService{settled: 2}
	router := newRouter(NewOrderHandler(stub))

	req := httptest.NewRequest(http.MethodPut, "/order/settle",
		strings.NewReader(`{"orderNumbers":["ORD_20260831_001","ORD_20260831_002"],"tip":3.00}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Settled int `json:"settled"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Settled != 2 {
		t.Fatalf("settled = %d", resp.Settled)
	}
	if stub.gotSettle.Tip != 3.00 || len(stub.gotSettle.OrderNumbers) != 2 {
		t.Fatalf("service got %+v", stub.gotSettle)
	}
}

func TestDispatchTicketRejectsBadID(t *testing.T) {
	router := newRouter(NewOrderHandler(&stubOrderService{}))

	req := httptest.NewRequest(http.MethodPut, "/order/kitchen/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDispatchTicketPassesID(t *testing.T) {
	stub := &stubOrderService{order: domain.Order{ID: 12, Status: domain.StatusPreparing}}
	router := newRouter(NewOrderHandler(stub))

	req := httptest.NewRequest(http.MethodPut, "/order/kitchen/12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.gotTicket != 12 {
		t.Fatalf("service got id %d", stub.gotTicket)
	}
}
