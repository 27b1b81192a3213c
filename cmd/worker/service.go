package main

import (
	"context"

	"github.com/skinsight/DetectService/internal/model"
	"github.com/wb-go/wbf/retry"
)

type AuditService interface {
	RecordAuditEvent(ctx context.Context, event *model.DetectionEvent) error
}

// NoopPublisher - ЗАГЛУШКА, воркер только читает очередь, публиковать ему нечего
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}
