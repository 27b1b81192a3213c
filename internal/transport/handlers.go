// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/skinsight/DetectService/internal/auth"
	"github.com/skinsight/DetectService/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type HistoryHandler struct {
	service  HistoryService
	uploader ImageUploader
}

type HistoryService interface {
	RecordDetection(ctx context.Context, userID int64, imageURL string) (*model.HistoryEntry, error)
	ListHistory(ctx context.Context, userID int64) ([]model.HistoryEntry, error)
	GetHistory(ctx context.Context, id, userID int64) (*model.HistoryEntry, error) // запись + симптомы из справочника
	DeleteHistory(ctx context.Context, id, userID int64) error                     // удалить как в базе, так и в minio
}

// ImageUploader - загрузка в хранилище происходит на уровне API, сервис получает уже готовую ссылку
type ImageUploader interface {
	Upload(ctx context.Context, key string, size int64, contentType string, r io.Reader) (string, error)
}

func NewHistoryHandler(svc HistoryService, up ImageUploader) *HistoryHandler {
	return &HistoryHandler{
		service:  svc,
		uploader: up,
	}
}

func (h HistoryHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h HistoryHandler) Detect(ctx *ginext.Context) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		ctx.JSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
		return
	}

	// парсинг загружаемой картинки
	imageFile, imageHeader, err := ctx.Request.FormFile("detectImage")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrEmptyImage.Error()})
		return
	}
	defer closeFileFlow(imageFile)

	imageCType := imageHeader.Header.Get("Content-Type")
	if imageHeader.Size <= 0 || !model.InImageTypeMap[imageCType] {
		ctx.JSON(400, map[string]string{"error": model.ErrUnsupportedFormat.Error()})
		return
	}

	// декодируем чтобы убедиться что внутри реально картинка, потом отматываем на начало
	if _, err := imaging.Decode(imageFile); err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrUnsupportedFormat.Error()})
		return
	}
	if _, err := imageFile.Seek(0, io.SeekStart); err != nil {
		ctx.JSON(500, map[string]string{"error": model.ErrCommon500.Error()})
		return
	}

	// кладем в хранилище и получаем публичную ссылку
	key := "detect/" + uuid.New().String() + model.GetImageFileExt[imageCType]
	imageURL, err := h.uploader.Upload(ctx.Request.Context(), key, imageHeader.Size, imageCType, imageFile)
	if err != nil {
		ctx.JSON(500, map[string]string{"error": model.ErrCommon500.Error()})
		return
	}

	// передаем в сервис
	res, err := h.service.RecordDetection(ctx.Request.Context(), userID, imageURL)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, model.Envelope{Message: "Success", Data: shapeEntry(res)})
}

func (h HistoryHandler) GetAllHistory(ctx *ginext.Context) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		ctx.JSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
		return
	}

	res, err := h.service.ListHistory(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	views := make([]model.HistoryView, 0, len(res))
	for i := range res {
		views = append(views, shapeEntry(&res[i]))
	}

	ctx.JSON(200, model.Envelope{Message: "Success", Data: views})
}

func (h HistoryHandler) GetOneHistory(ctx *ginext.Context) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		ctx.JSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
		return
	}

	id, err := parseHistoryID(ctx.Param("historyId"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectID.Error()})
		return
	}

	res, err := h.service.GetHistory(ctx.Request.Context(), id, userID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, model.Envelope{Message: "Success", Data: shapeEntry(res)})
}

func (h HistoryHandler) Delete(ctx *ginext.Context) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		ctx.JSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
		return
	}

	id, err := parseHistoryID(ctx.Param("historyId"))
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrIncorrectID.Error()})
		return
	}

	if err := h.service.DeleteHistory(ctx.Request.Context(), id, userID); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, model.Envelope{Message: "success", Data: nil})
}

func parseHistoryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrIncorrectID
	}
	return id, nil
}
