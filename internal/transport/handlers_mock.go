package transport

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/skinsight/DetectService/internal/model"
)

type mockHistoryService struct {
	recordFn func(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error)
	listFn   func(ctx context.Context, userID int64) ([]model.HistoryEntry, error)
	getFn    func(ctx context.Context, id, userID int64) (*model.HistoryEntry, error)
	deleteFn func(ctx context.Context, id, userID int64) error
}

func (m *mockHistoryService) RecordDetection(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error) {
	return m.recordFn(ctx, userID, imageURL)
}

func (m *mockHistoryService) ListHistory(ctx context.Context, userID int64) ([]model.HistoryEntry, error) {
	return m.listFn(ctx, userID)
}

func (m *mockHistoryService) GetHistory(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
	return m.getFn(ctx, id, userID)
}

func (m *mockHistoryService) DeleteHistory(ctx context.Context, id, userID int64) error {
	return m.deleteFn(ctx, id, userID)
}

type mockUploader struct {
	uploadFn func(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error) {
	return m.uploadFn(ctx, key, size, contentType, r)
}

func init() {
	gin.SetMode(gin.TestMode)
}
