package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/resilience"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, Options{Key: "faq:test"}), mr
}

func TestLoadMissingKey(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load(context.Background())
	if !errors.Is(err, domain.ErrTrainingPayloadMissing) {
		t.Fatalf("expected ErrTrainingPayloadMissing, got %v", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	body := `{"qaPairs":[{"question":"q","answer":"a"}],"version":"1.0"}`

	if err := store.Save(ctx, []byte(body)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != body {
		t.Fatalf("unexpected payload %s", got)
	}
	if stored, _ := mr.Get("faq:test"); stored != body {
		t.Fatalf("expected key faq:test to hold payload, got %q", stored)
	}
}

func TestLoadUnavailableIsTemporary(t *testing.T) {
	store, mr := newTestStore(t)
	store.executor = resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		BreakerEnabled:      false,
	})
	mr.Close()

	_, err := store.Load(context.Background())
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 16)
	go func() {
		_ = store.SubscribeTrainingUpdated(ctx, func(context.Context) error {
			fired <- struct{}{}
			return nil
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-fired:
			return
		case <-tick.C:
			if err := store.PublishTrainingUpdated(ctx); err != nil {
				t.Fatalf("PublishTrainingUpdated() error = %v", err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for notification")
		}
	}
}
