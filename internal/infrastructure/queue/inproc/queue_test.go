package inproc

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

func TestPublishWithoutSubscriberIsTemporary(t *testing.T) {
	q := New()
	err := q.PublishDocumentIngested(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestPublishRunsSubscribedHandler(t *testing.T) {
	q := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	stopped := make(chan struct{})
	go func() {
		_ = q.SubscribeDocumentIngested(ctx, func(_ context.Context, id string) error {
			got <- id
			return nil
		})
		close(stopped)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := q.PublishDocumentIngested(context.Background(), "doc-1"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if id := <-got; id != "doc-1" {
		t.Fatalf("expected doc-1, got %s", id)
	}

	cancel()
	<-stopped
	if err := q.PublishDocumentIngested(context.Background(), "doc-2"); err == nil {
		t.Fatalf("expected error after unsubscribe")
	}
}
