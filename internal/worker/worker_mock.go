package worker

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/skinsight/DetectService/internal/model"
)

// MOCK SERVICE

type mockAuditService struct {
	recordFn func(ctx context.Context, event *model.DetectionEvent) error
}

func (m *mockAuditService) RecordAuditEvent(ctx context.Context, event *model.DetectionEvent) error {
	return m.recordFn(ctx, event)
}

// MOCK COMMITTER

type mockCommitter struct {
	commitFn func(ctx context.Context, msgs ...kafkago.Message) error
}

func (m *mockCommitter) Commit(ctx context.Context, msg kafkago.Message) error {
	if m.commitFn == nil {
		return nil
	}
	return m.commitFn(ctx, msg)
}
