package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studymate/internal/model"
	"studymate/internal/platform/rabbitmq"
)

var errUnknownAction = errors.New("unknown activity action")

// ActivityStore persists activity entries.
type ActivityStore interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
}

// ActivityPersistWorker drains the activity queue into the row store.
type ActivityPersistWorker struct {
	conn      *amqp.Connection
	store     ActivityStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActivityPersistWorker(conn *amqp.Connection, store ActivityStore, queueName string) *ActivityPersistWorker {
	return &ActivityPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *ActivityPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					log.Printf("worker persist activity failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ActivityPersistWorker) handle(ctx context.Context, body []byte) error {
	var entry model.ActivityLog
	if err := json.Unmarshal(body, &entry); err != nil {
		return fmt.Errorf("decode activity failed: %w", err)
	}
	if !entry.Action.Valid() {
		return fmt.Errorf("%w: %q", errUnknownAction, entry.Action)
	}
	entry.ID = 0
	return w.store.Create(ctx, &entry)
}

func (w *ActivityPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
