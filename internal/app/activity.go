package app

import (
	"context"
	"log"
	"sync"
	"time"

	"studymate/internal/model"
)

const activityWriteTimeout = 5 * time.Second

// ActivityLogger records user-visible actions. Implementations must not block or fail the caller.
type ActivityLogger interface {
	Record(action model.ActivityAction, details string)
}

type ActivityPublisher interface {
	Publish(ctx context.Context, entry model.ActivityLog) error
}

type ActivityStore interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
}

// ActivityRecorder hands each entry to a sink on its own goroutine and only logs failures.
type ActivityRecorder struct {
	sink func(ctx context.Context, entry model.ActivityLog) error
	now  func() time.Time
	wg   sync.WaitGroup
}

// NewQueuedActivityRecorder publishes entries for the persist worker.
func NewQueuedActivityRecorder(publisher ActivityPublisher) *ActivityRecorder {
	return &ActivityRecorder{sink: publisher.Publish, now: time.Now}
}

// NewDirectActivityRecorder writes entries straight to the row store.
func NewDirectActivityRecorder(store ActivityStore) *ActivityRecorder {
	return &ActivityRecorder{
		sink: func(ctx context.Context, entry model.ActivityLog) error {
			return store.Create(ctx, &entry)
		},
		now: time.Now,
	}
}

func (r *ActivityRecorder) Record(action model.ActivityAction, details string) {
	entry := model.ActivityLog{Action: action, Details: details, CreatedAt: r.now()}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				log.Printf("record activity %s panicked: %v", action, p)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
		defer cancel()
		if err := r.sink(ctx, entry); err != nil {
			log.Printf("record activity %s failed: %v", action, err)
		}
	}()
}

// Wait blocks until in-flight writes finish. Used on shutdown.
func (r *ActivityRecorder) Wait() {
	r.wg.Wait()
}

// truncate shortens s to at most n runes for activity details.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
