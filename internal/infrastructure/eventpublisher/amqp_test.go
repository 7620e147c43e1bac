package eventpublisher

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/iho/expensetracker/internal/domain"
)

type stubChannel struct {
	declareErr error
	publishErr error

	exchange, kind string
	published      []amqp091.Publishing
	keys           []string
	closed         bool
}

func (c *stubChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	c.exchange, c.kind = name, kind
	return c.declareErr
}

func (c *stubChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *stubChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisherRoutesByKind(t *testing.T) {
	ch := &stubChannel{}
	p, err := newAMQPPublisherWithChannel(ch, "expenses")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ch.exchange != "expenses" || ch.kind != "topic" {
		t.Fatalf("unexpected exchange declaration %q/%q", ch.exchange, ch.kind)
	}

	if err := p.Publish(context.Background(), &domain.ChangeEvent{ID: "e9", Kind: domain.ChangeEntryDeleted, EntryID: 3}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(ch.published) != 1 || ch.keys[0] != domain.ChangeEntryDeleted {
		t.Fatalf("unexpected publishes %v", ch.keys)
	}
	msg := ch.published[0]
	if msg.MessageId != "e9" || msg.ContentType != "application/json" || msg.DeliveryMode != amqp091.Persistent {
		t.Fatalf("unexpected message %+v", msg)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel to be closed")
	}
}

func TestAMQPPublisherDeclareFailure(t *testing.T) {
	ch := &stubChannel{declareErr: errors.New("access refused")}

	if _, err := newAMQPPublisherWithChannel(ch, "expenses"); err == nil {
		t.Fatal("expected error")
	}
	if !ch.closed {
		t.Fatal("expected channel to be closed after failed declaration")
	}
}

func TestAMQPPublisherPublishFailure(t *testing.T) {
	ch := &stubChannel{publishErr: amqp091.ErrClosed}
	p, err := newAMQPPublisherWithChannel(ch, "expenses")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Publish(context.Background(), &domain.ChangeEvent{Kind: domain.ChangeEntryCreated}); !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
