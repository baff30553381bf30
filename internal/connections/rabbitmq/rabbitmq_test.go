package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestDrainStaleConfirmDiscardsLeftover(t *testing.T) {
	acks := make(chan amqp.Confirmation, 1)
	acks <- amqp.Confirmation{Ack: true, DeliveryTag: 1}

	drainStaleConfirm(acks)

	select {
	case conf := <-acks:
		t.Fatalf("stale confirm still buffered: %+v", conf)
	default:
	}
}

func TestDrainStaleConfirmDoesNotBlockWhenEmpty(t *testing.T) {
	acks := make(chan amqp.Confirmation, 1)
	drainStaleConfirm(acks)

	// the next confirm must still come through untouched
	acks <- amqp.Confirmation{Ack: false, DeliveryTag: 2}
	select {
	case conf := <-acks:
		if conf.DeliveryTag != 2 {
			t.Fatalf("confirm = %+v", conf)
		}
	default:
		t.Fatal("fresh confirm was lost")
	}
}
