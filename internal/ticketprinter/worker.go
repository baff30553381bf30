// Package ticketprinter consumes kitchen ticket messages and pushes them
// to the thermal printer over a raw socket. A dead or misconfigured
// printer is logged and the ticket is dropped; the order itself has
// already moved on.
package ticketprinter

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"curryhouse/internal/connections/rabbitmq"
	"curryhouse/internal/domain"
	"curryhouse/internal/settings/repository"
)

// Printer writes a rendered ticket to a destination address.
type Printer interface {
	Print(ctx context.Context, addr string, payload []byte) error
}

// SocketPrinter is the real thing: dial, write, close.
type SocketPrinter struct {
	DialTimeout time.Duration
}

func (p *SocketPrinter) Print(ctx context.Context, addr string, payload []byte) error {
	d := net.Dialer{Timeout: p.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial printer %s: %w", addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write to printer %s: %w", addr, err)
	}
	return nil
}

type Worker struct {
	rmq     *rabbitmq.Client
	db      repository.SettingsRepositoryInterface
	printer Printer
	port    int
	log     *logrus.Entry
}

func NewWorker(rmq *rabbitmq.Client, db repository.SettingsRepositoryInterface, printer Printer, port int, log *logrus.Entry) *Worker {
	if printer == nil {
		printer = &SocketPrinter{DialTimeout: 5 * time.Second}
	}
	return &Worker{rmq: rmq, db: db, printer: printer, port: port, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.rmq.DeclareQueue(rabbitmq.TicketQueue, rabbitmq.TicketKeyBind); err != nil {
		return err
	}

	ch, err := w.rmq.ConsumerChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(rabbitmq.TicketQueue, "ticket-printer", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.log.Info("ticket printer consuming")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			w.handle(ctx, d)
		}
	}()

	<-ctx.Done()
	_ = ch.Cancel("ticket-printer", false)
	<-done
	w.log.Info("ticket printer stopped")
	return nil
}

// handle always acks; redelivering against a dead printer would just
// loop, so a failed print is logged and the ticket dropped.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	defer func() { _ = d.Ack(false) }()

	var msg domain.TicketMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.log.WithError(err).Error("undecodable ticket message")
		return
	}

	printer, err := w.db.LatestPrinter(ctx)
	if err != nil {
		w.log.WithError(err).WithField("order_number", msg.OrderNumber).Error("no printer configured")
		return
	}

	addr := fmt.Sprintf("%s:%d", printer.IP, w.port)
	if err := w.printer.Print(ctx, addr, RenderTicket(msg)); err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"order_number": msg.OrderNumber,
			"printer":      addr,
		}).Error("ticket print failed")
		return
	}

	w.log.WithFields(logrus.Fields{
		"order_number": msg.OrderNumber,
		"printer":      addr,
	}).Info("ticket printed")
}
