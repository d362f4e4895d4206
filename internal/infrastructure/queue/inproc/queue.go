// Package inproc delivers document jobs to a handler in the same process,
// for deployments that run without a broker.
package inproc

import (
	"context"
	"errors"
	"sync"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
)

type Queue struct {
	mu      sync.RWMutex
	handler func(context.Context, string) error
}

func New() *Queue {
	return &Queue{}
}

// PublishDocumentIngested runs the subscribed handler synchronously.
func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()

	if handler == nil {
		return domain.WrapError(domain.ErrTemporary, "inproc publish", errors.New("no document consumer subscribed"))
	}
	return handler(ctx, documentID)
}

// SubscribeDocumentIngested registers handler and blocks until ctx is done.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()

	<-ctx.Done()

	q.mu.Lock()
	q.handler = nil
	q.mu.Unlock()
	return nil
}
