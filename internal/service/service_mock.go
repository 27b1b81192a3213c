package service

import (
	"context"

	"github.com/skinsight/DetectService/internal/model"
	"github.com/wb-go/wbf/retry"
)

// MOCK REPOSITORY

type mockRepo struct {
	createFn      func(ctx context.Context, entry *model.HistoryEntry) error
	listByUserFn  func(ctx context.Context, userID int64) ([]model.HistoryEntry, error)
	getByIDFn     func(ctx context.Context, id, userID int64) (*model.HistoryEntry, error)
	deleteByIDFn  func(ctx context.Context, id, userID int64) error
	insertAuditFn func(ctx context.Context, event *model.DetectionEvent) error
}

func (m *mockRepo) Create(ctx context.Context, entry *model.HistoryEntry) error {
	return m.createFn(ctx, entry)
}

func (m *mockRepo) ListByUser(ctx context.Context, userID int64) ([]model.HistoryEntry, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockRepo) GetByIDForUser(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
	return m.getByIDFn(ctx, id, userID)
}

func (m *mockRepo) DeleteByIDForUser(ctx context.Context, id, userID int64) error {
	return m.deleteByIDFn(ctx, id, userID)
}

func (m *mockRepo) InsertAuditEvent(ctx context.Context, event *model.DetectionEvent) error {
	return m.insertAuditFn(ctx, event)
}

// MOCK PREDICTOR

type mockPredictor struct {
	predictFn func(ctx context.Context, imageURL string) (map[string]float64, error)
}

func (m *mockPredictor) Predict(ctx context.Context, imageURL string) (map[string]float64, error) {
	return m.predictFn(ctx, imageURL)
}

// MOCK STORAGE-DELETER

type mockDeleter struct {
	deleteFn func(ctx context.Context, imageURL string) error
}

func (m *mockDeleter) Delete(ctx context.Context, imageURL string) error {
	return m.deleteFn(ctx, imageURL)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	if m.sendFn == nil {
		return nil
	}
	return m.sendFn(ctx, s, key, v)
}

// MOCK для справочника болезней

type mockReference struct {
	symptomsFn func(disease string) ([]string, bool)
}

func (m *mockReference) Symptoms(disease string) ([]string, bool) {
	return m.symptomsFn(disease)
}
