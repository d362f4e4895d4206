package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

var errFlaky = errors.New("flaky")

func isFlaky(err error) bool { return errors.Is(err, errFlaky) }

type observerFake struct {
	retries []string
	states  []string
}

func (o *observerFake) ObserveRetry(operation string) { o.retries = append(o.retries, operation) }

func (o *observerFake) ObserveBreakerState(_ string, state string) {
	o.states = append(o.states, state)
}

func quickConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
	}
}

func TestExecuteRetriesTransientFailure(t *testing.T) {
	observer := &observerFake{}
	exec := NewExecutor(quickConfig(), WithObserver(observer))

	attempts := 0
	err := exec.Execute(context.Background(), "redis.set", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errFlaky
		}
		return nil
	}, TransientClassifier(isFlaky))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(observer.retries) != 2 || observer.retries[0] != "redis.set" {
		t.Fatalf("unexpected retries observed: %v", observer.retries)
	}
}

func TestExecuteReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	exec := NewExecutor(quickConfig())

	attempts := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errFlaky
	}, TransientClassifier(isFlaky))
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected flaky error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(quickConfig())

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, TransientClassifier(isFlaky))
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	observer := &observerFake{}
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, WithObserver(observer))

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
			return errFlaky
		}, nil)
		if !errors.Is(err, errFlaky) {
			t.Fatalf("expected flaky error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if len(observer.states) != 1 || observer.states[0] != "open" {
		t.Fatalf("unexpected breaker states: %v", observer.states)
	}
}

func TestTransientClassifier(t *testing.T) {
	classify := TransientClassifier(isFlaky)

	if class := classify(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancellation must be neither retried nor recorded, got %+v", class)
	}
	if class := classify(gobreaker.ErrOpenState); !class.Retryable {
		t.Fatalf("open circuit must be retryable, got %+v", class)
	}
	if class := classify(errors.New("boom")); class.Retryable || !class.RecordFailure {
		t.Fatalf("unknown errors must fail fast, got %+v", class)
	}
}
