// Package notifier consumes order-created events and sends best-effort
// confirmation emails. Failures are logged and dropped; an order never
// waits on email.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"curryhouse/internal/connections/rabbitmq"
	"curryhouse/internal/domain"
)

type Worker struct {
	rmq    *rabbitmq.Client
	mailer Mailer
	log    *logrus.Entry
}

func NewWorker(rmq *rabbitmq.Client, mailer Mailer, log *logrus.Entry) *Worker {
	return &Worker{rmq: rmq, mailer: mailer, log: log}
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.rmq.DeclareQueue(rabbitmq.NotifyQueue, rabbitmq.OrderCreatedKey); err != nil {
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
	msgs, err := ch.Consume(rabbitmq.NotifyQueue, "notifier", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w.log.Info("notifier consuming")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			w.handle(ctx, d)
		}
	}()

	<-ctx.Done()
	_ = ch.Cancel("notifier", false)
	<-done
	w.log.Info("notifier stopped")
	return nil
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	defer func() { _ = d.Ack(false) }()

	var msg domain.OrderCreatedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.log.WithError(err).Error("undecodable order event")
		return
	}
	if msg.CustomerEmail == "" {
		// dine-in orders often come in without contact details
		return
	}

	subject := fmt.Sprintf("Order %s confirmed", msg.OrderNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for your %s order. Your order number is %s and the total is %.2f.\n\nSee you soon!",
		msg.CustomerName, msg.OrderType, msg.OrderNumber, msg.Total)

	if err := w.mailer.Send(ctx, msg.CustomerEmail, subject, body); err != nil {
		w.log.WithError(err).WithField("order_number", msg.OrderNumber).Error("confirmation email failed")
		return
	}
	w.log.WithField("order_number", msg.OrderNumber).Info("confirmation email sent")
}
