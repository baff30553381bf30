package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"curryhouse/internal/cart"
	"curryhouse/internal/connections/rabbitmq"
	"curryhouse/internal/domain"
	"curryhouse/internal/orders/repository"
)

// totalTolerance is how far the client's claimed total may drift from the
// server-side recomputation before the order is rejected.
const totalTolerance = 0.01

type OrderServiceInterface interface {
	Create(ctx context.Context, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error)
	Accept(ctx context.Context, number string) (domain.Order, error)
	Cancel(ctx context.Context, number string) (domain.Order, error)
	TableBill(ctx context.Context, tableNo string) (domain.TableBill, error)
	Settle(ctx context.Context, req domain.SettleRequest) (int, error)
	KitchenQueue(ctx context.Context) ([]domain.Order, error)
	DispatchTicket(ctx context.Context, id int) (domain.Order, error)
	List(ctx context.Context, status, orderType string) ([]domain.Order, error)
}

// Publisher is the slice of the RabbitMQ client the order service uses.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte, messageID, correlationID string) error
}

// SettingsReader reports which order modes are currently accepted.
type SettingsReader interface {
	Latest(ctx context.Context) (domain.Settings, error)
}

type OrderService struct {
	db       repository.OrderRepositoryInterface
	queue    Publisher
	settings SettingsReader
	taxRate  float64
	log      *logrus.Entry
}

func NewOrderService(db repository.OrderRepositoryInterface, queue Publisher, settings SettingsReader, taxRate float64, log *logrus.Entry) OrderServiceInterface {
	return &OrderService{db: db, queue: queue, settings: settings, taxRate: taxRate, log: log}
}

func (s *OrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	if err := s.validate(ctx, req); err != nil {
		return domain.CreateOrderResponse{}, err
	}

	// Recompute totals from the line items; the client's arithmetic is a
	// claim, not a fact.
	c := cart.FromOrderLines(req.Items)
	subtotal, tax, total := c.Totals(s.taxRate)
	if req.Total != 0 && math.Abs(req.Total-total) > totalTolerance {
		return domain.CreateOrderResponse{}, fmt.Errorf(
			"%w: submitted total %.2f does not match computed total %.2f",
			domain.ErrInvalid, req.Total, total)
	}

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}

	status := domain.StatusPending
	payment := req.Payment
	if payment.Status == "" {
		payment.Status = domain.PaymentPending
	}
	// Orders paid through the gateway skip the manual accept step.
	if payment.Status == domain.PaymentPaid {
		status = domain.StatusAccepted
	}

	order := domain.Order{
		Number:       number,
		Customer:     req.Customer,
		Type:         req.OrderType,
		TableNumber:  req.TableNumber,
		DeliveryAddr: req.DeliveryAddr,
		Items:        req.Items,
		Subtotal:     subtotal,
		Tax:          tax,
		Total:        total,
		Payment:      payment,
		Status:       status,
	}

	if _, err := s.db.CreateOrder(ctx, order); err != nil {
		return domain.CreateOrderResponse{}, fmt.Errorf("save order: %w", err)
	}

	s.publishCreated(ctx, order)

	return domain.CreateOrderResponse{
		OrderNumber: number,
		Status:      status,
		Total:       total,
	}, nil
}

func (s *OrderService) validate(ctx context.Context, req domain.CreateOrderRequest) error {
	switch req.OrderType {
	case domain.TypeDineIn, domain.TypePickup, domain.TypeDelivery:
	default:
		return fmt.Errorf("%w: unknown order type %q", domain.ErrInvalid, req.OrderType)
	}

	if !s.modeEnabled(ctx, req.OrderType) {
		return fmt.Errorf("%w: %s orders are not being accepted right now", domain.ErrInvalid, req.OrderType)
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", domain.ErrInvalid)
	}
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: invalid quantity for %q", domain.ErrInvalid, it.Name)
		}
		if it.UnitPrice <= 0 && it.BasePrice <= 0 {
			return fmt.Errorf("%w: invalid price for %q", domain.ErrInvalid, it.Name)
		}
	}

	switch req.OrderType {
	case domain.TypeDineIn:
		if req.TableNumber == nil || strings.TrimSpace(*req.TableNumber) == "" {
			return fmt.Errorf("%w: table number is required for dine-in", domain.ErrInvalid)
		}
	case domain.TypeDelivery:
		if req.DeliveryAddr == nil || strings.TrimSpace(*req.DeliveryAddr) == "" {
			return fmt.Errorf("%w: delivery address is required", domain.ErrInvalid)
		}
		fallthrough
	case domain.TypePickup:
		if strings.TrimSpace(req.Customer.Name) == "" || strings.TrimSpace(req.Customer.Phone) == "" {
			return fmt.Errorf("%w: customer name and phone are required", domain.ErrInvalid)
		}
	}
	return nil
}

func (s *OrderService) modeEnabled(ctx context.Context, orderType string) bool {
	if s.settings == nil {
		return true
	}
	st, err := s.settings.Latest(ctx)
	if err != nil {
		// no settings document yet means everything is open
		return true
	}
	enabled, ok := st.Modes[orderType]
	return !ok || enabled
}

// nextOrderNumber builds ORD_YYYYMMDD_NNN from today's order count.
func (s *OrderService) nextOrderNumber(ctx context.Context) (string, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seq, err := s.db.CountCreatedSince(ctx, midnight)
	if err != nil {
		return "", fmt.Errorf("order sequence: %w", err)
	}
	return fmt.Sprintf("ORD_%s_%03d", now.Format("20060102"), seq+1), nil
}

func (s *OrderService) publishCreated(ctx context.Context, o domain.Order) {
	if s.queue == nil {
		return
	}
	msg := domain.OrderCreatedMessage{
		OrderNumber:   o.Number,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		OrderType:     o.Type,
		Total:         o.Total,
		CreatedAt:     time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.queue.Publish(pctx, rabbitmq.OrderCreatedKey, body, uuid.NewString(), o.Number); err != nil {
		// confirmation email is best-effort
		s.log.WithError(err).WithField("order_number", o.Number).Error("publish order.created failed")
	}
}

// Accept is idempotent: re-accepting an already accepted order returns it
// unchanged instead of failing a retried request.
func (s *OrderService) Accept(ctx context.Context, number string) (domain.Order, error) {
	if _, err := s.db.AcceptTx(ctx, number); err != nil {
		return domain.Order{}, err
	}
	return s.db.GetByNumber(ctx, number)
}

func (s *OrderService) Cancel(ctx context.Context, number string) (domain.Order, error) {
	changed, err := s.db.CancelTx(ctx, number)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.db.GetByNumber(ctx, number)
	if err != nil {
		return domain.Order{}, err
	}
	if !changed && o.Status != domain.StatusCancelled {
		return domain.Order{}, fmt.Errorf("%w: order %s is %s and cannot be cancelled", domain.ErrInvalid, number, o.Status)
	}
	return o, nil
}

// TableBill merges every pending order on the table into one consolidated
// bill: duplicate lines collapse, totals sum.
func (s *OrderService) TableBill(ctx context.Context, tableNo string) (domain.TableBill, error) {
	orders, err := s.db.PendingByTable(ctx, tableNo)
	if err != nil {
		return domain.TableBill{}, err
	}

	bill := domain.TableBill{TableNumber: tableNo, OrderNumbers: []string{}, Items: []domain.OrderLine{}}
	merged := cart.New()
	for _, o := range orders {
		bill.OrderNumbers = append(bill.OrderNumbers, o.Number)
		bill.Subtotal += o.Subtotal
		bill.Tax += o.Tax
		for _, l := range o.Items {
			merged.Add(cart.Line{
				Name:       l.Name,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice,
				BasePrice:  l.BasePrice,
				SpiceLevel: l.SpiceLevel,
				Addons:     l.Addons,
			})
		}
	}
	for _, l := range merged.Lines() {
		bill.Items = append(bill.Items, domain.OrderLine{
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			BasePrice:  l.BasePrice,
			SpiceLevel: l.SpiceLevel,
			Addons:     l.Addons,
		})
	}
	bill.Subtotal = cart.Round2(bill.Subtotal)
	bill.Tax = cart.Round2(bill.Tax)
	bill.Total = cart.Round2(bill.Subtotal + bill.Tax)
	return bill, nil
}

// Settle closes out the bill. Orders already settled by a concurrent
// admin session are skipped; the returned count says how many actually
// transitioned.
func (s *OrderService) Settle(ctx context.Context, req domain.SettleRequest) (int, error) {
	if len(req.OrderNumbers) == 0 {
		return 0, fmt.Errorf("%w: no order numbers to settle", domain.ErrInvalid)
	}
	if req.Tip < 0 {
		return 0, fmt.Errorf("%w: tip cannot be negative", domain.ErrInvalid)
	}
	settled, err := s.db.SettleTx(ctx, req.OrderNumbers, cart.Round2(req.Tip))
	if err != nil {
		return 0, err
	}
	return settled, nil
}

func (s *OrderService) KitchenQueue(ctx context.Context) ([]domain.Order, error) {
	return s.db.KitchenQueue(ctx)
}

// DispatchTicket marks a dine-in order as being prepared and hands the
// kitchen slip to the printer worker. A broken queue is logged and does
// not undo the transition: printing never blocks order progression.
func (s *OrderService) DispatchTicket(ctx context.Context, id int) (domain.Order, error) {
	changed, err := s.db.MarkPreparingTx(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.db.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !changed {
		return domain.Order{}, fmt.Errorf("%w: order %s is not a pending dine-in order", domain.ErrInvalid, o.Number)
	}

	table := ""
	if o.TableNumber != nil {
		table = *o.TableNumber
	}
	msg := domain.TicketMessage{
		OrderNumber: o.Number,
		TableNumber: table,
		Items:       o.Items,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		Total:       o.Total,
		CreatedAt:   time.Now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil || s.queue == nil {
		return o, nil
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.queue.Publish(pctx, "ticket."+o.Type, body, uuid.NewString(), o.Number); err != nil {
		s.log.WithError(err).WithField("order_number", o.Number).Error("publish kitchen ticket failed")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, status, orderType string) ([]domain.Order, error) {
	return s.db.List(ctx, status, orderType)
}
