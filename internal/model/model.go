// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"time"
)

type HistoryEntry struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	ImageURL  string         `json:"image_url"`
	Diseases  []DiseaseScore `json:"diseases"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// DiseaseScore - percentage хранится целым 0-100, наружу отдается дробью 0-1.
// Symptoms заполняется только при запросе одной записи.
type DiseaseScore struct {
	Disease    string   `json:"disease"`
	Percentage int      `json:"percentage"`
	Symptoms   []string `json:"symptoms,omitempty"`
}

//-------------------

const (
	EventDetectionRecorded = "detection_recorded"
	EventHistoryDeleted    = "history_deleted"
)

// DetectionEvent - сообщение для очереди аудита
type DetectionEvent struct {
	Event     string `json:"event"`
	HistoryID int64  `json:"history_id"`
	UserID    int64  `json:"user_id"`
	Detail    string `json:"detail,omitempty"`
}

//-------------------

// Response-DTO для клиента: percentage уже дробью

type DiseaseView struct {
	Disease    string   `json:"disease"`
	Percentage float64  `json:"percentage"`
	Symptoms   []string `json:"symptoms,omitempty"`
}

type HistoryView struct {
	ID       int64         `json:"id"`
	UserID   int64         `json:"user_id"`
	ImageURL string        `json:"image_url"`
	Diseases []DiseaseView `json:"diseases"`
}

type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ------------------

var (
	ErrCommon500         error = errors.New("something went wrong. Try again later") // 500
	ErrHistoryNotFound   error = errors.New("requested history entry doesn't exist") // 404
	ErrIncorrectID       error = errors.New("incorrect history id")                  // 400
	ErrEmptyImage        error = errors.New("empty/incorrect detect-image provided") // 400
	ErrUnsupportedFormat error = errors.New("unsupported image format")              // 400
	ErrPredictFailed     error = errors.New("prediction service failed")             // 500
	ErrUnauthorized      error = errors.New("missing or invalid authorization")      // 401
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
}

var InImageTypeMap = map[string]bool{
	JPEG: true,
	PNG:  true,
	GIF:  true,
}
