// Package worker contains the audit-worker consuming detection-events from the queue
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/skinsight/DetectService/internal/model"
	wbfkafka "github.com/wb-go/wbf/kafka"
)

type AuditWorkerService interface { // дублируется из cmd/worker - может вынести такие контракты в отдельный пакет(не model)?
	RecordAuditEvent(ctx context.Context, event *model.DetectionEvent) error
}

// Committer - кусок консьюмера, нужный воркеру для подтверждения оффсетов
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	service  AuditWorkerService
	queue    <-chan kafkago.Message
	consumer Committer
}

func NewWorkerInstance(svc AuditWorkerService, q <-chan kafkago.Message, cons *wbfkafka.Consumer) *Worker {
	return &Worker{service: svc, queue: q, consumer: cons}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			if err := w.processEvent(ctx, msg.Value); err != nil {
				log.Printf("Audit-event %q failed: %v", string(msg.Key), err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) processEvent(ctx context.Context, payload []byte) error {
	var event model.DetectionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("worker failed to unmarshal audit-event: %w", err)
	}

	// валидируем до записи: неизвестные события в аудит не идут
	switch event.Event {
	case model.EventDetectionRecorded, model.EventHistoryDeleted:
	default:
		return fmt.Errorf("unknown audit-event type %q", event.Event)
	}
	if event.HistoryID <= 0 || event.UserID <= 0 {
		return fmt.Errorf("audit-event %q has incorrect identifiers", event.Event)
	}

	if err := w.service.RecordAuditEvent(ctx, &event); err != nil {
		return fmt.Errorf("worker failed to save audit-event to DB: %w", err)
	}
	return nil
}
