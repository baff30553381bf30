package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"curryhouse/internal/domain"
)

// fakeOrderRepo keeps orders in memory and mimics the guarded status
// transitions of the SQL repository.
type fakeOrderRepo struct {
	orders []domain.Order
	nextID int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1}
}

func (f *fakeOrderRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	n := 0
	for _, o := range f.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, o domain.Order) (int, error) {
	o.ID = f.nextID
	f.nextID++
	o.CreatedAt = time.Now().UTC()
	f.orders = append(f.orders, o)
	return o.ID, nil
}

func (f *fakeOrderRepo) GetByNumber(ctx context.Context, number string) (domain.Order, error) {
	for _, o := range f.orders {
		if o.Number == number {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id int) (domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (f *fakeOrderRepo) List(ctx context.Context, status, orderType string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if (status == "" || o.Status == status) && (orderType == "" || o.Type == orderType) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) PendingByTable(ctx context.Context, tableNo string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.Status == domain.StatusPending && o.TableNumber != nil && *o.TableNumber == tableNo {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) KitchenQueue(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.Type == domain.TypeDineIn && (o.Status == domain.StatusPending || o.Status == domain.StatusPreparing) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) AcceptTx(ctx context.Context, number string) (bool, error) {
	for i := range f.orders {
		if f.orders[i].Number != number {
			continue
		}
		if f.orders[i].Status != domain.StatusPending {
			return false, nil
		}
		f.orders[i].Status = domain.StatusAccepted
		return true, nil
	}
	return false, domain.ErrNotFound
}

func (f *fakeOrderRepo) CancelTx(ctx context.Context, number string) (bool, error) {
	for i := range f.orders {
		if f.orders[i].Number != number {
			continue
		}
		switch f.orders[i].Status {
		case domain.StatusPending, domain.StatusAccepted:
			f.orders[i].Status = domain.StatusCancelled
			return true, nil
		}
		return false, nil
	}
	return false, domain.ErrNotFound
}

func (f *fakeOrderRepo) SettleTx(ctx context.Context, numbers []string, tip float64) (int, error) {
	settled := 0
	for _, n := range numbers {
		for i := range f.orders {
			if f.orders[i].Number != n || f.orders[i].Status != domain.StatusPending {
				continue
			}
			f.orders[i].Status = domain.StatusCompleted
			f.orders[i].Payment.Status = domain.PaymentPaid
			if settled == 0 {
				f.orders[i].Tip = tip
			}
			settled++
		}
	}
	return settled, nil
}

func (f *fakeOrderRepo) MarkPreparingTx(ctx context.Context, id int) (bool, error) {
	for i := range f.orders {
		if f.orders[i].ID != id {
			continue
		}
		if f.orders[i].Type != domain.TypeDineIn || f.orders[i].Status != domain.StatusPending {
			return false, nil
		}
		f.orders[i].Status = domain.StatusPreparing
		return true, nil
	}
	return false, domain.ErrNotFound
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, body []byte, messageID, correlationID string) error {
	p.published = append(p.published, key)
	return nil
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestService(repo *fakeOrderRepo, pub *fakePublisher) OrderServiceInterface {
	var p Publisher
	if pub != nil {
		p = pub
	}
	return NewOrderService(repo, p, nil, 0.06, testLogger())
}

func strPtr(s string) *string { return &s }

func dineInRequest(table string) domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		OrderType:   domain.TypeDineIn,
		TableNumber: strPtr(table),
		Items: []domain.OrderLine{
			{Name: "Chicken Korma", Quantity: 1, BasePrice: 14.00, UnitPrice: 14.00},
		},
	}
}

func TestCreateRecomputesTotals(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)

	req := dineInRequest("5")
	req.Subtotal = 1.00
	req.Tax = 0.00
	req.Total = 0 // legacy clients omit the total; server fills it in

	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Total != 14.84 {
		t.Fatalf("total = %.2f, want 14.84", resp.Total)
	}

	o, err := repo.GetByNumber(context.Background(), resp.OrderNumber)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Subtotal != 14.00 || o.Tax != 0.84 {
		t.Fatalf("stored totals %.2f/%.2f, want 14.00/0.84", o.Subtotal, o.Tax)
	}
}

func TestCreateRejectsMismatchedTotal(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)

	req := dineInRequest("5")
	req.Total = 9.99 // computed total is 14.84

	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid total rejection, got %v", err)
	}
}

func TestCreatePaidOrderSkipsAcceptStep(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)

	req := domain.CreateOrderRequest{
		OrderType: domain.TypePickup,
		Customer:  domain.Customer{Name: "Asha", Phone: "07700900123"},
		Items: []domain.OrderLine{
			{Name: "Veg Biryani", Quantity: 2, BasePrice: 10.50, UnitPrice: 10.50},
		},
		Payment: domain.Payment{Method: "card", Status: domain.PaymentPaid, TransactionID: "txn_1"},
	}

	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Status != domain.StatusAccepted {
		t.Fatalf("paid order status = %s, want accepted", resp.Status)
	}
}

func TestCreateOrderNumbersIncrementWithinDay(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)

	first, err := svc.Create(context.Background(), dineInRequest("1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(context.Background(), dineInRequest("2"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !strings.HasSuffix(first.OrderNumber, "_001") {
		t.Fatalf("first order number = %s", first.OrderNumber)
	}
	if !strings.HasSuffix(second.OrderNumber, "_002") {
		t.Fatalf("second order number = %s", second.OrderNumber)
	}
}

func TestCreateDineInRequiresTable(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), nil)
	req := dineInRequest("5")
	req.TableNumber = nil
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestCreatePublishesOrderCreated(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(newFakeOrderRepo(), pub)

	if _, err := svc.Create(context.Background(), dineInRequest("3")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0] != "order.created" {
		t.Fatalf("published keys = %v", pub.published)
	}
}

func TestAcceptIsIdempotent(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)

	resp, err := svc.Create(context.Background(), dineInRequest("4"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Accept(context.Background(), resp.OrderNumber)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	second, err := svc.Accept(context.Background(), resp.OrderNumber)
	if err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	if first.Status != domain.StatusAccepted || second.Status != domain.StatusAccepted {
		t.Fatalf("statuses %s/%s, want accepted both times", first.Status, second.Status)
	}
}

func TestCancelCompletedOrderFails(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)

	resp, err := svc.Create(context.Background(), dineInRequest("4"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Settle(context.Background(), domain.SettleRequest{OrderNumbers: []string{resp.OrderNumber}}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), resp.OrderNumber); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestTableBillMergesPendingOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	req := dineInRequest("7")
	req.Items = []domain.OrderLine{{Name: "Dal Makhani", Quantity: 1, BasePrice: 10.00, UnitPrice: 10.00}}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	req2 := dineInRequest("7")
	req2.Items = []domain.OrderLine{{Name: "Dal Makhani", Quantity: 2, BasePrice: 10.00, UnitPrice: 10.00}}
	if _, err := svc.Create(ctx, req2); err != nil {
		t.Fatalf("create: %v", err)
	}

	bill, err := svc.TableBill(ctx, "7")
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if len(bill.OrderNumbers) != 2 {
		t.Fatalf("orders on bill = %d, want 2", len(bill.OrderNumbers))
	}
	if len(bill.Items) != 1 || bill.Items[0].Quantity != 3 {
		t.Fatalf("merged lines = %+v, want one line with quantity 3", bill.Items)
	}
	if bill.Subtotal != 30.00 {
		t.Fatalf("bill subtotal = %.2f, want 30.00", bill.Subtotal)
	}
	if bill.Total != 31.80 {
		t.Fatalf("bill total = %.2f, want 31.80", bill.Total)
	}
}

func TestSettleClearsTableAndRecordsTip(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	a, _ := svc.Create(ctx, dineInRequest("9"))
	b, _ := svc.Create(ctx, dineInRequest("9"))

	settled, err := svc.Settle(ctx, domain.SettleRequest{
		OrderNumbers: []string{a.OrderNumber, b.OrderNumber},
		Tip:          3.00,
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled != 2 {
		t.Fatalf("settled = %d, want 2", settled)
	}

	bill, err := svc.TableBill(ctx, "9")
	if err != nil {
		t.Fatalf("bill after settle: %v", err)
	}
	if len(bill.OrderNumbers) != 0 {
		t.Fatalf("table still has pending orders after settle: %v", bill.OrderNumbers)
	}

	first, _ := repo.GetByNumber(ctx, a.OrderNumber)
	if first.Status != domain.StatusCompleted || first.Payment.Status != domain.PaymentPaid {
		t.Fatalf("settled order is %s/%s", first.Status, first.Payment.Status)
	}
	if first.Tip != 3.00 {
		t.Fatalf("tip = %.2f, want 3.00", first.Tip)
	}
}

func TestSettleSkipsAlreadySettledOrders(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	a, _ := svc.Create(ctx, dineInRequest("2"))
	if _, err := svc.Settle(ctx, domain.SettleRequest{OrderNumbers: []string{a.OrderNumber}}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	settled, err := svc.Settle(ctx, domain.SettleRequest{OrderNumbers: []string{a.OrderNumber}})
	if err != nil {
		t.Fatalf("re-settle: %v", err)
	}
	if settled != 0 {
		t.Fatalf("re-settle count = %d, want 0", settled)
	}
}

func TestDispatchTicketPublishesAndMarksPreparing(t *testing.T) {
	repo := newFakeOrderRepo()
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)
	ctx := context.Background()

	resp, err := svc.Create(ctx, dineInRequest("6"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created, _ := repo.GetByNumber(ctx, resp.OrderNumber)

	o, err := svc.DispatchTicket(ctx, created.ID)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if o.Status != domain.StatusPreparing {
		t.Fatalf("status = %s, want preparing", o.Status)
	}
	if len(pub.published) == 0 || pub.published[len(pub.published)-1] != "ticket.dinein" {
		t.Fatalf("published keys = %v, want last = ticket.dinein", pub.published)
	}

	// a second dispatch must not re-print
	if _, err := svc.DispatchTicket(ctx, created.ID); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid on re-dispatch, got %v", err)
	}
}

type closedSettings struct{}

func (closedSettings) Latest(ctx context.Context) (domain.Settings, error) {
	return domain.Settings{Modes: map[string]bool{domain.TypeDelivery: false}}, nil
}

func TestCreateRejectsDisabledMode(t *testing.T) {
	svc := NewOrderService(newFakeOrderRepo(), nil, closedSettings{}, 0.06, testLogger())

	req := domain.CreateOrderRequest{
		OrderType:    domain.TypeDelivery,
		Customer:     domain.Customer{Name: "Ravi", Phone: "07700900456"},
		DeliveryAddr: strPtr("12 High Street"),
		Items: []domain.OrderLine{
			{Name: "Saag Aloo", Quantity: 1, BasePrice: 8.00, UnitPrice: 8.00},
		},
	}
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}
