// Package service provides business-logic for the app
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/skinsight/DetectService/internal/model"
	"github.com/skinsight/DetectService/internal/mwlogger"
	"github.com/skinsight/DetectService/internal/repository"
	"github.com/wb-go/wbf/retry"
)

type HistoryService struct {
	repo      repository.HistoryRepo
	predictor Predictor
	publisher TaskPublisher
	storage   ImageDeleter
	reference SymptomSource
}

func NewHistoryService(repo repository.HistoryRepo, pred Predictor, pub TaskPublisher, strg ImageDeleter, ref SymptomSource) *HistoryService {
	return &HistoryService{
		repo:      repo,
		predictor: pred,
		publisher: pub,
		storage:   strg,
		reference: ref,
	}
}

// Predictor - контракт для внешнего сервиса предсказаний
type Predictor interface {
	Predict(ctx context.Context, imageURL string) (map[string]float64, error)
}

// TaskPublisher - контракт для работы с очередью
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ImageDeleter - контракт для работы с хранилищем
type ImageDeleter interface {
	Delete(ctx context.Context, imageURL string) error
}

// SymptomSource - статический справочник болезней
type SymptomSource interface {
	Symptoms(disease string) ([]string, bool)
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// RecordDetection - предсказание по ссылке, ранжирование, топ-3 в базу
func (c HistoryService) RecordDetection(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	scores, err := c.predictor.Predict(ctx, imageURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get prediction for uploaded image")
		if errors.Is(err, model.ErrPredictFailed) {
			return nil, model.ErrPredictFailed
		}
		return nil, model.ErrCommon500
	}

	now := time.Now().UTC()
	entry := &model.HistoryEntry{
		UserID:    userID,
		ImageURL:  imageURL,
		Diseases:  rankScores(scores),
		CreatedAt: &now,
	}

	if err := c.repo.Create(ctx, entry); err != nil {
		logger.Error().Err(err).Msg("Failed to create history entry in DB")
		return nil, model.ErrCommon500
	}

	c.publishEvent(ctx, model.EventDetectionRecorded, entry.ID, userID, topDiseaseDetail(entry.Diseases))

	return entry, nil
}

func (c HistoryService) ListHistory(ctx context.Context, userID int64) ([]model.HistoryEntry, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	res, err := c.repo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch history list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

// GetHistory - одна запись с симптомами из справочника;
// болезни без записи в справочнике получают пустой список, это не ошибка
func (c HistoryService) GetHistory(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	entry, err := c.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrHistoryNotFound):
			return nil, model.ErrHistoryNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch history entry %d from DB", id))
			return nil, model.ErrCommon500
		}
	}

	for i := range entry.Diseases {
		symptoms, ok := c.reference.Symptoms(entry.Diseases[i].Disease)
		if !ok {
			symptoms = []string{}
		}
		entry.Diseases[i].Symptoms = symptoms
	}

	return entry, nil
}

// DeleteHistory - сначала картинка из хранилища, потом запись из базы.
// Если хранилище не отдало удаление - запись остается, чтобы не потерять ссылку на объект.
func (c HistoryService) DeleteHistory(ctx context.Context, id, userID int64) error {
	logger := mwlogger.LoggerFromContext(ctx)

	entry, err := c.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrHistoryNotFound):
			return model.ErrHistoryNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch history entry %d from DB", id))
			return model.ErrCommon500
		}
	}

	if err := c.storage.Delete(ctx, entry.ImageURL); err != nil {
		logger.Error().Err(err).Msg("Failed to delete detect-image from Storage")
		return model.ErrCommon500
	}

	if err := c.repo.DeleteByIDForUser(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrHistoryNotFound):
			return model.ErrHistoryNotFound
		default:
			logger.Error().Err(err).Msg("Failed to delete history entry from DB")
			return model.ErrCommon500
		}
	}

	c.publishEvent(ctx, model.EventHistoryDeleted, id, userID, "")

	return nil
}

// RecordAuditEvent - используется аудит-воркером при разборе очереди
func (c HistoryService) RecordAuditEvent(ctx context.Context, event *model.DetectionEvent) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.InsertAuditEvent(ctx, event); err != nil {
		logger.Error().Err(err).Msg("Failed to insert audit-event to DB")
		return model.ErrCommon500
	}
	return nil
}

// publishEvent - аудит-события идут в очередь best-effort: неудача логируется, запрос не валим
func (c HistoryService) publishEvent(ctx context.Context, event string, historyID, userID int64, detail string) {
	logger := mwlogger.LoggerFromContext(ctx)

	payload, err := json.Marshal(model.DetectionEvent{
		Event:     event,
		HistoryID: historyID,
		UserID:    userID,
		Detail:    detail,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal audit-event")
		return
	}

	key := []byte(strconv.FormatInt(historyID, 10))
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, key, payload); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish audit-event for history %d", historyID))
	}
}
