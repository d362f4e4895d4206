// Package redisstore keeps the training payload under a redis key and
// announces changes on a pub/sub channel.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/infrastructure/resilience"
)

type Store struct {
	client   redis.UniversalClient
	key      string
	channel  string
	executor *resilience.Executor
}

type Options struct {
	Key                string
	ResilienceExecutor *resilience.Executor
}

func New(client redis.UniversalClient, options Options) *Store {
	key := options.Key
	if key == "" {
		key = "faq:training"
	}
	return &Store{
		client:   client,
		key:      key,
		channel:  key + ":updated",
		executor: options.ResilienceExecutor,
	}
}

func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	var raw []byte
	missing := false
	err := s.execute(ctx, "redis.get", func(ctx context.Context) error {
		value, err := s.client.Get(ctx, s.key).Bytes()
		if errors.Is(err, redis.Nil) {
			missing = true
			return nil
		}
		if err != nil {
			return err
		}
		raw = value
		return nil
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("redis get", err)
	}
	if missing {
		return nil, domain.ErrTrainingPayloadMissing
	}
	return raw, nil
}

func (s *Store) Save(ctx context.Context, payload []byte) error {
	err := s.execute(ctx, "redis.set", func(ctx context.Context) error {
		return s.client.Set(ctx, s.key, payload, 0).Err()
	})
	if err != nil {
		return wrapTemporaryIfNeeded("redis set", err)
	}
	return nil
}

func (s *Store) PublishTrainingUpdated(ctx context.Context) error {
	err := s.execute(ctx, "redis.publish", func(ctx context.Context) error {
		return s.client.Publish(ctx, s.channel, s.key).Err()
	})
	if err != nil {
		return wrapTemporaryIfNeeded("redis publish", err)
	}
	return nil
}

func (s *Store) SubscribeTrainingUpdated(ctx context.Context, handler func(context.Context) error) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				return nil
			}
			if err := handler(ctx); err != nil {
				slog.Warn("training_reload_failed", "channel", s.channel, "error", err.Error())
			}
		}
	}
}

func (s *Store) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	if s.executor == nil {
		return call(ctx)
	}
	return s.executor.Execute(ctx, operation, call, classifyRedisError)
}

var classifyRedisError = resilience.TransientClassifier(func(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, redis.ErrClosed)
})

func wrapTemporaryIfNeeded(operation string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyRedisError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
