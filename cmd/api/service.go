package main

import (
	"context"

	"github.com/skinsight/DetectService/internal/model"
)

type HistoryAPIRepository interface {
	Create(ctx context.Context, entry *model.HistoryEntry) error
	ListByUser(ctx context.Context, userID int64) ([]model.HistoryEntry, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*model.HistoryEntry, error)
	DeleteByIDForUser(ctx context.Context, id, userID int64) error
}
type HistoryAPIService interface {
	RecordDetection(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error)
	ListHistory(ctx context.Context, userID int64) ([]model.HistoryEntry, error)
	GetHistory(ctx context.Context, id, userID int64) (*model.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id, userID int64) error
}
